package generator

import (
	"strings"

	"auto_wp_seo_publisher/markup"
)

// Assemble concatenates intro, section fragments in heading order, the
// related-links block when overflow is non-empty, and the FAQ. Fragments are
// joined with blank lines and otherwise left untouched.
func Assemble(intro string, sections []SectionDraft, overflow []LinkTarget, faq, keyword string) string {
	parts := make([]string, 0, len(sections)+3)
	if intro != "" {
		parts = append(parts, intro)
	}
	for _, s := range sections {
		if s.HTML != "" {
			parts = append(parts, s.HTML)
		}
	}
	if len(overflow) > 0 {
		links := make([]markup.Link, len(overflow))
		for i, l := range overflow {
			links[i] = markup.Link{Title: l.Title, URL: l.URL}
		}
		parts = append(parts, markup.RelatedLinksBlock(keyword, links))
	}
	if faq != "" {
		parts = append(parts, faq)
	}
	return strings.Join(parts, "\n\n")
}
