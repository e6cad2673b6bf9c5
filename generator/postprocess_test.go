package generator

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestRepairSlugShape(t *testing.T) {
	long := strings.Repeat("youth rent support ", 10)
	tests := []struct {
		name    string
		slug    string
		keyword string
		topic   string
		want    string
	}{
		{"kept", "youth-rent-support-2026", "청년 월세", "2026 youth rent support", "youth-rent-support-2026"},
		{"normalised", " Youth_Rent  Support!! ", "", "", "youth-rent-support"},
		{"sentinel uses keyword", "post-slug", "rent support", "x", "rent-support"},
		{"empty uses keyword", "", "AI tools 2026", "x", "ai-tools-2026"},
		{"korean keyword uses topic", "", "청년 월세", "2026 youth rent support", "2026-youth-rent-support"},
		{"all korean hashes topic", "", "청년 월세", "청년 월세 지원", hashSlug("청년 월세 지원")},
		{"long", strings.ReplaceAll(long, " ", "-"), "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairSlug(tt.slug, tt.keyword, tt.topic)
			if tt.want != "" && got != tt.want {
				t.Errorf("RepairSlug = %q, want %q", got, tt.want)
			}
			if len(got) > MaxSlugLen {
				t.Errorf("len = %d > %d", len(got), MaxSlugLen)
			}
			if !slugShape.MatchString(got) {
				t.Errorf("slug %q does not match hyphen-case shape", got)
			}
		})
	}
}

func TestRepairDescription(t *testing.T) {
	kw := "청년 월세 지원"
	tests := []struct {
		name string
		desc string
	}{
		{"prefixed already", kw + "을 한 번에 정리"},
		{"missing keyword", "올해 달라진 신청 조건을 정리했습니다"},
		{"empty", ""},
		{"too long", strings.Repeat("가", 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairDescription(tt.desc, kw)
			if !strings.HasPrefix(got, kw) {
				t.Errorf("description %q does not start with %q", got, kw)
			}
			if n := utf8.RuneCountInString(got); n > MaxDescriptionLen {
				t.Errorf("length %d > %d", n, MaxDescriptionLen)
			}
		})
	}
	if got := RepairDescription("설명", kw); got != kw+": 설명" {
		t.Errorf("prefix form = %q", got)
	}
}

func TestLimitTokens(t *testing.T) {
	if got := LimitTokens("청년 월세 지원 신청 방법", MaxKeywordTokens); got != "청년 월세 지원" {
		t.Errorf("got %q", got)
	}
	if got := LimitTokens("  AI  ", 3); got != "AI" {
		t.Errorf("got %q", got)
	}
}

func TestLimitCaption(t *testing.T) {
	kw := "월세 지원"
	short := kw + " 안내"
	if got := LimitCaption(short, kw); got != short {
		t.Errorf("short caption changed: %q", got)
	}
	long := kw + " - " + strings.Repeat("설명", 30)
	got := LimitCaption(long, kw)
	if !strings.Contains(got, kw) {
		t.Errorf("keyword lost: %q", got)
	}
	if n := utf8.RuneCountInString(got); n > utf8.RuneCountInString(kw)+MaxCaptionExtra {
		t.Errorf("caption too long: %d", n)
	}
	tail := strings.Repeat("설명", 30) + kw
	if got := LimitCaption(tail, kw); got != kw {
		t.Errorf("keyword at tail should collapse to keyword, got %q", got)
	}
}

func TestCleanFragment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced html", "```html\n<h2>A</h2><p>b</p>\n```", "<h2>A</h2><p>b</p>"},
		{"plain html", "<p>x</p>", "<p>x</p>"},
		{"empty", "```\n```", ""},
		{"markdown", "## 제목\n\n본문", "<h2>제목</h2>\n<p>본문</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFragment(tt.in); got != tt.want {
				t.Errorf("CleanFragment = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnsureHeading(t *testing.T) {
	if got := EnsureHeading("<h2>A</h2><p>x</p>", "A"); got != "<h2>A</h2><p>x</p>" {
		t.Errorf("existing heading changed: %q", got)
	}
	if got := EnsureHeading("<p>x</p>", "A & B"); got != "<h2>A &amp; B</h2>\n<p>x</p>" {
		t.Errorf("got %q", got)
	}
}

func TestEnsureKeyword(t *testing.T) {
	if got := EnsureKeyword("월세 안내 그림", "월세", ": "); got != "월세 안내 그림" {
		t.Errorf("got %q", got)
	}
	if got := EnsureKeyword("안내 그림", "월세", ": "); got != "월세: 안내 그림" {
		t.Errorf("got %q", got)
	}
	if got := EnsureKeyword(" ", "월세", " - "); got != "월세" {
		t.Errorf("got %q", got)
	}
}

func TestStripImagePlaceholders(t *testing.T) {
	in := "<p>앞</p>[이미지 설명: 그래프]<p>뒤</p>\n**이미지 설명:** 사진\n그림 1 월세 추이\n<p>끝</p>"
	got := StripImagePlaceholders(in)
	for _, bad := range []string{"이미지 설명", "그림 1"} {
		if strings.Contains(got, bad) {
			t.Errorf("placeholder %q left in %q", bad, got)
		}
	}
	if !strings.Contains(got, "<p>앞</p>") || !strings.Contains(got, "<p>끝</p>") {
		t.Errorf("real content removed: %q", got)
	}
}
