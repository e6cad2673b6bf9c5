package generator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
)

const (
	MaxSlugLen        = 75
	MaxDescriptionLen = 160
	MaxKeywordTokens  = 3
	MaxCaptionExtra   = 20

	// slugSentinel is the placeholder the planner returns when it has no slug.
	slugSentinel = "post-slug"
)

var (
	fencePattern   = regexp.MustCompile("```[a-zA-Z]*")
	htmlTagPattern = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9]+`)
	headingOpen    = regexp.MustCompile(`(?i)^\s*<h2\b`)

	placeholderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\[이미지 설명[^\]]*\]`),
		regexp.MustCompile(`(?i)그림 \d+[^\n<]*\n?`),
		regexp.MustCompile(`(?i)Figure \d+[^\n<]*\n?`),
		regexp.MustCompile(`(?i)\*\*이미지 설명:\*\*[^\n]*\n?`),
	}
)

// CleanFragment strips Markdown code fences from a generated HTML fragment.
// A fragment that came back as Markdown (no HTML tags at all) is rendered to
// HTML so downstream heading-boundary edits still find their anchors.
func CleanFragment(text string) string {
	text = strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	if text == "" || htmlTagPattern.MatchString(text) {
		return text
	}
	rendered, err := markdownToHTML(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(rendered)
}

func markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// StripImagePlaceholders removes literal image-description text the
// generator sometimes writes in place of real images.
func StripImagePlaceholders(content string) string {
	for _, re := range placeholderPatterns {
		content = re.ReplaceAllString(content, "")
	}
	return content
}

// EnsureHeading prefixes fragment with the section heading when the generated
// markup does not open with one.
func EnsureHeading(fragment, heading string) string {
	if headingOpen.MatchString(fragment) {
		return fragment
	}
	h := "<h2>" + html.EscapeString(heading) + "</h2>"
	if fragment == "" {
		return h
	}
	return h + "\n" + fragment
}

// EnsureKeyword prepends keyword and sep to text when keyword is absent.
func EnsureKeyword(text, keyword, sep string) string {
	if keyword == "" || strings.Contains(text, keyword) {
		return text
	}
	if strings.TrimSpace(text) == "" {
		return keyword
	}
	return keyword + sep + text
}

// StripAngleBrackets removes characters that would open markup inside an
// attribute value.
func StripAngleBrackets(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// TruncateRunes cuts s to at most n characters.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// LimitTokens keeps the first n whitespace-separated tokens.
func LimitTokens(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// NormalizeSlug lowercases s and collapses everything outside [a-z0-9] into
// single hyphens.
func NormalizeSlug(s string) string {
	s = slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// TruncateSlug cuts a slug to n bytes and trims trailing hyphens.
func TruncateSlug(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return strings.TrimRight(s, "-")
}

// RepairSlug returns a non-empty hyphen-case ASCII slug of at most
// MaxSlugLen. An empty or sentinel slug is derived from the focus keyword;
// when that has no ASCII content either, from a hash of the topic.
func RepairSlug(slug, keyword, topic string) string {
	s := TruncateSlug(NormalizeSlug(slug), MaxSlugLen)
	if s == "" || s == slugSentinel {
		s = TruncateSlug(NormalizeSlug(strings.ReplaceAll(keyword, " ", "-")), MaxSlugLen)
	}
	if s == "" {
		s = TruncateSlug(NormalizeSlug(topic), MaxSlugLen)
	}
	if s == "" {
		s = hashSlug(topic)
	}
	return s
}

func hashSlug(topic string) string {
	sum := sha256.Sum256([]byte(topic))
	return "post-" + hex.EncodeToString(sum[:])[:8]
}

// RepairDescription guarantees the description starts with keyword and fits
// MaxDescriptionLen characters.
func RepairDescription(desc, keyword string) string {
	desc = strings.TrimSpace(desc)
	if keyword != "" && !strings.HasPrefix(desc, keyword) {
		if desc == "" {
			desc = keyword
		} else {
			desc = keyword + ": " + desc
		}
	}
	return TruncateRunes(desc, MaxDescriptionLen)
}

// LimitCaption keeps a caption within MaxCaptionExtra characters beyond the
// keyword, never cutting the keyword itself.
func LimitCaption(caption, keyword string) string {
	limit := utf8.RuneCountInString(keyword) + MaxCaptionExtra
	if utf8.RuneCountInString(caption) <= limit {
		return caption
	}
	cut := TruncateRunes(caption, limit)
	if strings.Contains(cut, keyword) {
		return strings.TrimSpace(cut)
	}
	return keyword
}
