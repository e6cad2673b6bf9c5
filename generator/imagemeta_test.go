package generator

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func checkImageTasks(t *testing.T, tasks []ImageTask, kw string) {
	t.Helper()
	if len(tasks) != ImageCount {
		t.Fatalf("got %d tasks, want %d", len(tasks), ImageCount)
	}
	for i, task := range tasks {
		wantRole := RoleBody
		if i == 0 {
			wantRole = RoleFeatured
		}
		if task.Role != wantRole {
			t.Errorf("task %d role = %s, want %s", i, task.Role, wantRole)
		}
		if !strings.Contains(task.AltText, kw) || !strings.Contains(task.Caption, kw) {
			t.Errorf("task %d missing keyword: alt=%q caption=%q", i, task.AltText, task.Caption)
		}
		if strings.ContainsAny(task.AltText+task.Caption, "<>") {
			t.Errorf("task %d has angle brackets: alt=%q caption=%q", i, task.AltText, task.Caption)
		}
		if task.Prompt == "" {
			t.Errorf("task %d has no prompt", i)
		}
	}
}

func TestPlanImagesMalformedFallsBack(t *testing.T) {
	topic, kw := "2026 youth rent support", "청년 월세"
	llm := &MockLLM{Replies: map[PromptKind][]string{KindImageMeta: {"이미지 네 장을 준비했습니다!"}}}
	res := newTestAgent(t, llm).PlanImages(context.Background(), topic, "title", []string{"a"}, kw)

	if !res.Failed() || res.Failure.Kind != FailureMalformed {
		t.Fatalf("failure = %+v", res.Failure)
	}
	if !reflect.DeepEqual(res.Value, FallbackImageTasks(topic, kw)) {
		t.Errorf("fallback not deterministic: %+v", res.Value)
	}
	checkImageTasks(t, res.Value, kw)
}

func TestPlanImagesEnforcesDescriptors(t *testing.T) {
	kw := "청년 월세"
	reply := `{"images":[
		{"type":"body","prompt":"city apartment","alt":"아파트 <b>전경</b>","caption":"월세 계약"},
		{"type":"featured","prompt":"","caption":"청년 월세 신청 절차 안내 이미지입니다 아주 길게 설명하는 캡션"},
		"not an object"
	]}`
	llm := &MockLLM{Replies: map[PromptKind][]string{KindImageMeta: {reply}}}
	res := newTestAgent(t, llm).PlanImages(context.Background(), "topic", "title", nil, kw)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	checkImageTasks(t, res.Value, kw)

	first := res.Value[0]
	if first.AltText != kw+": 아파트 b전경/b" {
		t.Errorf("alt = %q", first.AltText)
	}
	if first.Caption != kw+" - 월세 계약" {
		t.Errorf("caption = %q", first.Caption)
	}
	if res.Value[1].Prompt == "" || res.Value[1].AltText != kw {
		t.Errorf("defaults not applied: %+v", res.Value[1])
	}
	if !reflect.DeepEqual(res.Value[2:], FallbackImageTasks("topic", kw)[2:]) {
		t.Errorf("missing descriptors not padded from fallback: %+v", res.Value[2:])
	}
}

func TestPlanImagesTopLevelArray(t *testing.T) {
	kw := "AI 자동화"
	var items []string
	for i := 0; i < 5; i++ {
		items = append(items, `{"prompt":"p","alt":"AI 자동화 화면","caption":"AI 자동화"}`)
	}
	llm := &MockLLM{Replies: map[PromptKind][]string{KindImageMeta: {"[" + strings.Join(items, ",") + "]"}}}
	res := newTestAgent(t, llm).PlanImages(context.Background(), "topic", "title", nil, kw)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	checkImageTasks(t, res.Value, kw)
}
