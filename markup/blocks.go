package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// ImageBlockMarker opens every image block rendered by ImageBlock.
const ImageBlockMarker = "<!-- wp:image "

// Figure is the data an inline image block carries.
type Figure struct {
	MediaID   int
	SourceURL string
	Alt       string
	Caption   string
}

// ImageBlock renders a self-contained block-editor image figure bound to its
// media id through the wp-image-{id} class.
func ImageBlock(f Figure) string {
	return fmt.Sprintf(
		"\n\n%s{\"id\":%d,\"sizeSlug\":\"large\",\"linkDestination\":\"none\"} -->\n"+
			`<figure class="wp-block-image size-large">`+
			`<img src="%s" alt="%s" class="wp-image-%d"/>`+
			`<figcaption>%s</figcaption>`+
			"</figure>\n<!-- /wp:image -->\n\n",
		ImageBlockMarker, f.MediaID,
		html.EscapeString(f.SourceURL), html.EscapeString(f.Alt), f.MediaID,
		html.EscapeString(f.Caption),
	)
}

// CountImageBlocks counts rendered image blocks in content.
func CountImageBlocks(content string) int {
	return strings.Count(content, ImageBlockMarker)
}

// Link is an anchor target for a link block.
type Link struct {
	Title string
	URL   string
}

// RelatedLinksBlock renders the trailing "more on this topic" list. It returns
// "" when links is empty.
func RelatedLinksBlock(keyword string, links []Link) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="internal-links" style="margin: 30px 0; padding: 20px; background-color: #f9f9f9; border-left: 5px solid #0073aa;">`)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("<h3>💡 %s 관련 더 보기</h3>\n<ul>\n", html.EscapeString(keyword)))
	for _, l := range links {
		title := l.Title
		if title == "" {
			title = "관련 글"
		}
		url := l.URL
		if url == "" {
			url = "#"
		}
		b.WriteString(fmt.Sprintf(`<li><a href="%s" target="_blank" rel="dofollow">%s</a></li>`,
			html.EscapeString(url), html.EscapeString(title)))
		b.WriteString("\n")
	}
	b.WriteString("</ul>\n</div>")
	return b.String()
}

var anchorPattern = regexp.MustCompile(`(?is)(<a\b[^>]*>)(.*?)</a>`)

// UnwrapAnchors replaces every anchor for which drop returns true with its
// inner markup.
func UnwrapAnchors(content string, drop func(openTag string) bool) string {
	return anchorPattern.ReplaceAllStringFunc(content, func(full string) string {
		m := anchorPattern.FindStringSubmatch(full)
		if len(m) != 3 || !drop(m[1]) {
			return full
		}
		return m[2]
	})
}
