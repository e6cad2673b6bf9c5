// Package quality scores a finished document against the SEO checklist. It is
// diagnostic only and never blocks publishing.
package quality

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	MinTextLength = 2000
	MinHeadings   = 4
)

// Input is the stored view of a document.
type Input struct {
	Title         string
	Content       string
	FocusKeyword  string
	FeaturedMedia int
}

// Check is one checklist line.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Report is the scored checklist.
type Report struct {
	TextLength int     `json:"text_length"`
	Headings   int     `json:"headings"`
	BodyImages int     `json:"body_images"`
	Links      int     `json:"links"`
	Checks     []Check `json:"checks"`
	Score      int     `json:"score"`
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Score evaluates in. Title and content may carry HTML entities as returned by
// the backend's rendered fields.
func Score(in Input) (Report, error) {
	nodes, err := nethtml.ParseFragment(strings.NewReader(in.Content), &nethtml.Node{
		Type:     nethtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return Report{}, fmt.Errorf("parse content: %w", err)
	}

	var (
		text strings.Builder
		rep  Report
	)
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch n.Type {
		case nethtml.TextNode:
			text.WriteString(n.Data)
		case nethtml.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.H2:
				rep.Headings++
			case atom.Img:
				rep.BodyImages++
			case atom.A:
				rep.Links++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	plain := strings.Join(strings.Fields(text.String()), " ")
	rep.TextLength = utf8.RuneCountInString(plain)
	kw := strings.TrimSpace(in.FocusKeyword)
	title := html.UnescapeString(in.Title)

	rep.Checks = []Check{
		{Name: "text_length", Passed: rep.TextLength >= MinTextLength, Detail: fmt.Sprintf("%d/%d", rep.TextLength, MinTextLength)},
		{Name: "headings", Passed: rep.Headings >= MinHeadings, Detail: fmt.Sprintf("%d/%d", rep.Headings, MinHeadings)},
		{Name: "keyword_in_title", Passed: kw != "" && strings.Contains(title, kw)},
		{Name: "keyword_in_content", Passed: kw != "" && strings.Contains(plain, kw)},
		{Name: "featured_image", Passed: in.FeaturedMedia != 0},
		{Name: "body_images", Passed: rep.BodyImages > 0, Detail: fmt.Sprintf("%d", rep.BodyImages)},
	}
	passed := 0
	for _, c := range rep.Checks {
		if c.Passed {
			passed++
		}
	}
	rep.Score = passed * 100 / len(rep.Checks)
	return rep, nil
}
