package markup

import (
	"fmt"
	"strings"
	"testing"
)

func sections(n int) string {
	var b strings.Builder
	b.WriteString("<p>intro</p>\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<h2>Section %d</h2>\n<p>body %d</p>\n", i+1, i+1)
	}
	return b.String()
}

func figures(n int) []Figure {
	out := make([]Figure, n)
	for i := range out {
		out[i] = Figure{
			MediaID:   100 + i,
			SourceURL: fmt.Sprintf("https://cdn.example/img-%d.webp", i),
			Alt:       "청년 월세 지원 그림",
			Caption:   "청년 월세 지원",
		}
	}
	return out
}

func TestSplitByBoundary(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		boundaries int
		tokens     int
	}{
		{"empty", "", 0, 0},
		{"no heading", "<p>x</p>", 0, 1},
		{"one heading", "<h2>a</h2><p>x</p>", 1, 3},
		{"trailing boundary", "<h2>a</h2>", 1, 2},
		{"adjacent", "<h2>a</h2></h2>", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := SplitByBoundary(tt.content, HeadingClose)
			if len(toks) != tt.tokens {
				t.Fatalf("got %d tokens, want %d: %#v", len(toks), tt.tokens, toks)
			}
			var joined strings.Builder
			n := 0
			for _, tok := range toks {
				joined.WriteString(tok.Text)
				if tok.Boundary {
					n++
				}
			}
			if joined.String() != tt.content {
				t.Errorf("join = %q, want %q", joined.String(), tt.content)
			}
			if n != tt.boundaries || CountBoundaries(tt.content, HeadingClose) != tt.boundaries {
				t.Errorf("boundaries = %d, want %d", n, tt.boundaries)
			}
		})
	}
}

func TestInsertImagesAtConfiguredHeadings(t *testing.T) {
	content := sections(7)
	slots := map[int]int{0: 0, 1: 2, 2: 5}
	res := InsertImages(content, figures(3), slots)

	if res.Inline != 3 || res.Appended != 0 {
		t.Fatalf("inline=%d appended=%d, want 3/0", res.Inline, res.Appended)
	}
	if got := CountImageBlocks(res.Content); got != 3 {
		t.Fatalf("image blocks = %d, want 3", got)
	}

	parts := strings.Split(res.Content, HeadingClose)
	// parts[k+1] starts right after the k-th heading close.
	for k, wantID := range map[int]int{0: 100, 2: 101, 5: 102} {
		if !strings.HasPrefix(strings.TrimSpace(parts[k+1]), ImageBlockMarker) {
			t.Errorf("heading %d not followed by an image block", k)
		}
		if !strings.Contains(parts[k+1], fmt.Sprintf("wp-image-%d", wantID)) {
			t.Errorf("heading %d: want media %d", k, wantID)
		}
	}
	for _, k := range []int{1, 3, 4, 6} {
		if strings.Contains(parts[k+1], ImageBlockMarker) {
			t.Errorf("heading %d unexpectedly followed by an image", k)
		}
	}
}

func TestInsertImagesFallbackKeepsEveryImage(t *testing.T) {
	tests := []struct {
		name     string
		headings int
		inline   int
	}{
		{"no headings", 0, 0},
		{"fewer than largest slot", 4, 2},
		{"exactly one", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := sections(tt.headings)
			before := CountImageBlocks(content)
			res := InsertImages(content, figures(3), map[int]int{0: 0, 1: 2, 2: 5})
			after := CountImageBlocks(res.Content)
			if after-before != 3 {
				t.Fatalf("image blocks added = %d, want 3", after-before)
			}
			if res.Inline != tt.inline || res.Inline+res.Appended != 3 {
				t.Errorf("inline=%d appended=%d, want inline %d", res.Inline, res.Appended, tt.inline)
			}
			if !strings.HasPrefix(res.Content, content[:min(len(content), 12)]) {
				t.Error("original content prefix lost")
			}
		})
	}
}

func TestInsertImagesSkipsUnuploaded(t *testing.T) {
	figs := figures(3)
	figs[1].MediaID = 0
	res := InsertImages(sections(6), figs, map[int]int{0: 0, 1: 2, 2: 5})
	if got := CountImageBlocks(res.Content); got != 2 {
		t.Fatalf("image blocks = %d, want 2", got)
	}
}

func TestInsertAfterBoundariesSharedIndex(t *testing.T) {
	res := InsertAfterBoundaries("<h2>a</h2>tail", HeadingClose, []Block{
		{After: 0, HTML: "[1]"},
		{After: 0, HTML: "[2]"},
		{After: 9, HTML: "[3]"},
	})
	want := "<h2>a</h2>[1][2]tail[3]"
	if res.Content != want {
		t.Errorf("content = %q, want %q", res.Content, want)
	}
	if res.Inline != 2 || res.Appended != 1 {
		t.Errorf("inline=%d appended=%d", res.Inline, res.Appended)
	}
}

func TestImageBlockEscapesAttributes(t *testing.T) {
	block := ImageBlock(Figure{MediaID: 7, SourceURL: "https://x/a.webp", Alt: `say "hi"`, Caption: "a & b"})
	if !strings.Contains(block, `alt="say &#34;hi&#34;"`) {
		t.Errorf("alt not escaped: %s", block)
	}
	if !strings.Contains(block, "<figcaption>a &amp; b</figcaption>") {
		t.Errorf("caption not escaped: %s", block)
	}
	if !strings.Contains(block, `class="wp-image-7"`) || !strings.Contains(block, `"id":7`) {
		t.Errorf("media id missing: %s", block)
	}
}

func TestFindTagsAndAttributes(t *testing.T) {
	content := `<p><img src="a.webp" alt="one" class="wp-image-12"/><img src='b.webp' class="other"><a href="https://x.test/p">x</a></p>`
	imgs := FindTags(content, "img", "class", "wp-image-")
	if len(imgs) != 1 {
		t.Fatalf("got %d wp images, want 1", len(imgs))
	}
	if v, ok := Attribute(imgs[0].Tag, "alt"); !ok || v != "one" {
		t.Errorf("alt = %q,%v", v, ok)
	}
	if all := FindTags(content, "img", "", ""); len(all) != 2 {
		t.Errorf("all imgs = %d, want 2", len(all))
	}
	if v, ok := Attribute(FindTags(content, "img", "", "")[1].Tag, "src"); !ok || v != "b.webp" {
		t.Errorf("single-quoted src = %q", v)
	}
	if a := FindTags(content, "a", "href", "x.test"); len(a) != 1 {
		t.Errorf("anchors = %d, want 1", len(a))
	}
}

func TestOpenTagPatternIsCached(t *testing.T) {
	content := `<details open><summary>질문</summary></details><DETAILS>`
	if got := FindTags(content, "details", "", ""); len(got) != 2 {
		t.Fatalf("details tags = %d, want 2", len(got))
	}
	if _, ok := tagPatterns.Load("details"); !ok {
		t.Fatal("pattern for details not cached")
	}
	if openTagPattern("details") != openTagPattern("details") {
		t.Error("pattern recompiled on lookup")
	}
	if got := FindTags(content, "summary", "", ""); len(got) != 1 {
		t.Errorf("summary tags = %d, want 1", len(got))
	}
}

func TestRewriteAttribute(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		attr string
		val  string
		want string
	}{
		{"replace", `<img src="a" alt="old">`, "alt", "new", `<img src="a" alt="new">`},
		{"add", `<a href="x">`, "rel", "noopener", `<a href="x" rel="noopener">`},
		{"add self closing", `<img src="a"/>`, "alt", "k", `<img src="a" alt="k" />`},
		{"escape", `<img alt="">`, "alt", `a"b`, `<img alt="a&#34;b">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteAttribute(tt.tag, tt.attr, tt.val); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteTags(t *testing.T) {
	content := `<a href="https://ext.test/a">A</a> and <a href="/local">B</a>`
	out := RewriteTags(content, "a", "href", "ext.test", func(tag string) string {
		return RewriteAttribute(tag, "target", "_blank")
	})
	want := `<a href="https://ext.test/a" target="_blank">A</a> and <a href="/local">B</a>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRelatedLinksBlock(t *testing.T) {
	if RelatedLinksBlock("kw", nil) != "" {
		t.Error("empty links should render nothing")
	}
	block := RelatedLinksBlock("청년 월세", []Link{{Title: "A", URL: "https://a"}, {Title: "B", URL: "https://b"}})
	if strings.Count(block, "<li>") != 2 {
		t.Errorf("want 2 items: %s", block)
	}
	if !strings.Contains(block, "청년 월세 관련 더 보기") {
		t.Errorf("heading missing: %s", block)
	}
}

func TestUnwrapAnchors(t *testing.T) {
	content := `<p><a href="https://dead.test">dead</a> <a href="https://ok.test"><strong>ok</strong></a></p>`
	out := UnwrapAnchors(content, func(tag string) bool {
		v, _ := Attribute(tag, "href")
		return strings.Contains(v, "dead")
	})
	want := `<p>dead <a href="https://ok.test"><strong>ok</strong></a></p>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
