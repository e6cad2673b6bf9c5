package generator

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func linkPool(n int) []LinkTarget {
	out := make([]LinkTarget, n)
	for i := range out {
		out[i] = LinkTarget{ID: i + 1, Title: fmt.Sprintf("글 %d", i+1), URL: fmt.Sprintf("https://blog.example/post-%d", i+1)}
	}
	return out
}

func headings(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("섹션 %d", i+1)
	}
	return out
}

func TestAllocateSixSectionsEightLinks(t *testing.T) {
	pool := linkPool(8)
	alloc := Allocate(headings(6), pool, nil, NewLockedRand(42))

	counts := map[string]int{}
	for i, s := range alloc.Sections {
		if s.Link == nil {
			t.Fatalf("section %d has no link", i)
		}
		counts[s.Link.URL]++
	}
	if len(alloc.Overflow) != 2 {
		t.Fatalf("overflow = %d, want 2", len(alloc.Overflow))
	}
	for _, l := range alloc.Overflow {
		counts[l.URL]++
	}
	if len(counts) != len(pool) {
		t.Errorf("expected every pool link once, got %v", counts)
	}
	for url, n := range counts {
		if n != 1 {
			t.Errorf("%s used %d times", url, n)
		}
	}
	if pool[0].URL != "https://blog.example/post-1" {
		t.Error("pool was mutated")
	}
}

func TestAllocatePoolSmallerThanSections(t *testing.T) {
	alloc := Allocate(headings(7), linkPool(5), nil, NewLockedRand(3))
	if len(alloc.Overflow) != 0 {
		t.Errorf("overflow = %v, want none", alloc.Overflow)
	}
	seen := map[string]bool{}
	for i, s := range alloc.Sections {
		if s.Link == nil {
			t.Fatalf("section %d left without an internal link", i)
		}
		if i < 5 {
			if seen[s.Link.URL] {
				t.Errorf("section %d repeats %s within the first pass", i, s.Link.URL)
			}
			seen[s.Link.URL] = true
		}
	}
	for i := 5; i < 7; i++ {
		if *alloc.Sections[i].Link != *alloc.Sections[i-5].Link {
			t.Errorf("section %d should reuse section %d's link", i, i-5)
		}
	}
}

func TestAllocateDeterministicWithSeed(t *testing.T) {
	a := Allocate(headings(6), linkPool(8), nil, NewLockedRand(99))
	b := Allocate(headings(6), linkPool(8), nil, NewLockedRand(99))
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different allocations")
	}
}

func TestAllocateHintsAndEdgeCases(t *testing.T) {
	pool := append(linkPool(2), LinkTarget{Title: "dup", URL: "https://blog.example/post-1/"}, LinkTarget{Title: "blank"})
	alloc := Allocate(headings(3), pool, []string{"통계청", "법제처"}, nil)
	if got := alloc.Sections[0].Link.URL; got != "https://blog.example/post-1" {
		t.Errorf("unshuffled first link = %s", got)
	}
	if alloc.Sections[2].Link.URL != alloc.Sections[0].Link.URL {
		t.Error("deduplicated pool of 2 should wrap at section 3")
	}
	if alloc.Sections[1].ExternalHint != "법제처" || alloc.Sections[2].ExternalHint != "" {
		t.Errorf("hints = %+v", alloc.Sections)
	}

	empty := Allocate(headings(2), nil, nil, NewLockedRand(1))
	for _, s := range empty.Sections {
		if s.Link != nil {
			t.Error("empty pool should allocate no links")
		}
	}
}

func TestDistinctHints(t *testing.T) {
	got := DistinctHints([]string{"통계청", "통계청 ", " ", "법제처"}, 5)
	want := []string{"통계청", "관련 공신력 있는 출처 2", "관련 공신력 있는 출처 3", "법제처", "관련 공신력 있는 출처 5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := DistinctHints([]string{"a", "b", "c"}, 2); len(got) != 2 {
		t.Errorf("not truncated: %v", got)
	}
}

func TestPlanExternalLinks(t *testing.T) {
	secs := headings(3)
	llm := &MockLLM{Replies: map[PromptKind][]string{
		KindExternalLinks: {`{"sources":["국토교통부", "국토교통부", "한국부동산원"]}`},
	}}
	res := newTestAgent(t, llm).PlanExternalLinks(context.Background(), secs)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	want := []string{"국토교통부", "관련 공신력 있는 출처 2", "한국부동산원"}
	if !reflect.DeepEqual(res.Value, want) {
		t.Errorf("got %v, want %v", res.Value, want)
	}

	bad := &MockLLM{Replies: map[PromptKind][]string{KindExternalLinks: {"통계청, 법제처"}}}
	res = newTestAgent(t, bad).PlanExternalLinks(context.Background(), secs)
	if !res.Failed() || len(res.Value) != 3 {
		t.Errorf("malformed plan: %+v", res)
	}
}
