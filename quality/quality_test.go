package quality

import (
	"strings"
	"testing"
)

func document(headings int, paragraph string, images bool) string {
	var b strings.Builder
	b.WriteString("<p>" + paragraph + "</p>")
	for i := 0; i < headings; i++ {
		b.WriteString("<h2>소제목</h2><p>" + paragraph + "</p>")
		if images {
			b.WriteString(`<figure class="wp-block-image"><img src="https://wp.example/a.webp" alt="청년 월세"/></figure>`)
		}
	}
	b.WriteString("<style>.x{}</style><script>var s = 1;</script>")
	return b.String()
}

func TestScorePassing(t *testing.T) {
	para := strings.Repeat("청년 월세 지원 제도를 자세히 알아봅니다. ", 20)
	rep, err := Score(Input{
		Title:         "2026 청년 월세 &amp; 주거 지원",
		Content:       document(6, para, true),
		FocusKeyword:  "청년 월세",
		FeaturedMedia: 501,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Passed() || rep.Score != 100 {
		t.Errorf("report = %+v", rep)
	}
	if rep.Headings != 6 || rep.BodyImages != 6 {
		t.Errorf("headings=%d images=%d", rep.Headings, rep.BodyImages)
	}
}

func TestScoreFailures(t *testing.T) {
	rep, err := Score(Input{
		Title:        "다른 제목",
		Content:      document(2, "짧은 본문", false),
		FocusKeyword: "청년 월세",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Passed() || rep.Score != 0 {
		t.Errorf("score = %d", rep.Score)
	}
	for _, c := range rep.Checks {
		if c.Passed {
			t.Errorf("check %s unexpectedly passed", c.Name)
		}
	}
}

func TestScoreIgnoresScriptText(t *testing.T) {
	rep, err := Score(Input{Content: "<p>가나</p><script>abcdef</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.TextLength != 2 {
		t.Errorf("text length = %d, want 2", rep.TextLength)
	}
}
