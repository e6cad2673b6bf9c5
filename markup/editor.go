// Package markup holds the narrow string-structural HTML edits the pipeline
// performs on generated content: splitting at heading boundaries, locating tags
// by attribute and rewriting single attributes. It is not an HTML parser; it is
// only correct for the small tag vocabulary the generator emits.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"
)

// HeadingClose is the closing tag that delimits sections.
const HeadingClose = "</h2>"

// Token is one piece of a boundary split.
type Token struct {
	Text     string
	Boundary bool
}

// SplitByBoundary splits content on every literal occurrence of boundary,
// keeping the delimiters as their own tokens. Joining all Text fields
// reproduces content exactly.
func SplitByBoundary(content, boundary string) []Token {
	if boundary == "" {
		return []Token{{Text: content}}
	}
	var tokens []Token
	rest := content
	for {
		i := strings.Index(rest, boundary)
		if i < 0 {
			break
		}
		if i > 0 {
			tokens = append(tokens, Token{Text: rest[:i]})
		}
		tokens = append(tokens, Token{Text: boundary, Boundary: true})
		rest = rest[i+len(boundary):]
	}
	if rest != "" {
		tokens = append(tokens, Token{Text: rest})
	}
	return tokens
}

// CountBoundaries returns how many boundaries SplitByBoundary would yield.
func CountBoundaries(content, boundary string) int {
	if boundary == "" {
		return 0
	}
	return strings.Count(content, boundary)
}

// TagMatch is an opening tag located in content.
type TagMatch struct {
	Start int
	End   int
	Tag   string
}

// tagPatterns caches the opening-tag pattern per tag name.
var tagPatterns sync.Map

func openTagPattern(name string) *regexp.Regexp {
	if re, ok := tagPatterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := tagPatterns.LoadOrStore(name, regexp.MustCompile(`(?is)<`+regexp.QuoteMeta(name)+`\b[^>]*>`))
	return re.(*regexp.Regexp)
}

// FindTags returns every opening tag named name whose attr value contains
// substr. An empty attr matches every tag of that name.
func FindTags(content, name, attr, substr string) []TagMatch {
	re := openTagPattern(name)
	var out []TagMatch
	for _, loc := range re.FindAllStringIndex(content, -1) {
		tag := content[loc[0]:loc[1]]
		if attr != "" {
			val, ok := Attribute(tag, attr)
			if !ok || !strings.Contains(val, substr) {
				continue
			}
		}
		out = append(out, TagMatch{Start: loc[0], End: loc[1], Tag: tag})
	}
	return out
}

var attrPatterns sync.Map

func attrPattern(attr string) *regexp.Regexp {
	if re, ok := attrPatterns.Load(attr); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := attrPatterns.LoadOrStore(attr, regexp.MustCompile(`(?is)\s`+regexp.QuoteMeta(attr)+`\s*=\s*("([^"]*)"|'([^']*)'|([^\s>]+))`))
	return re.(*regexp.Regexp)
}

// Attribute returns the unescaped value of attr inside a single opening tag.
func Attribute(tag, attr string) (string, bool) {
	m := attrPattern(attr).FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	for _, v := range m[2:] {
		if v != "" {
			return html.UnescapeString(v), true
		}
	}
	return "", true
}

// RewriteAttribute sets attr to value on a single opening tag, replacing an
// existing value or adding the attribute before the closing bracket.
func RewriteAttribute(tag, attr, value string) string {
	quoted := fmt.Sprintf(` %s="%s"`, attr, html.EscapeString(value))
	re := attrPattern(attr)
	if loc := re.FindStringIndex(tag); loc != nil {
		return tag[:loc[0]] + quoted + tag[loc[1]:]
	}
	switch {
	case strings.HasSuffix(tag, "/>"):
		return strings.TrimRight(tag[:len(tag)-2], " ") + quoted + " />"
	case strings.HasSuffix(tag, ">"):
		return tag[:len(tag)-1] + quoted + ">"
	}
	return tag
}

// RewriteTags applies fn to every opening tag named name matching attr/substr
// and splices the results back into content.
func RewriteTags(content, name, attr, substr string, fn func(tag string) string) string {
	matches := FindTags(content, name, attr, substr)
	if len(matches) == 0 {
		return content
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(content[last:m.Start])
		b.WriteString(fn(m.Tag))
		last = m.End
	}
	b.WriteString(content[last:])
	return b.String()
}
