package generator

import (
	"context"
	"fmt"
	"strings"
)

func genericHint(i int) string {
	return fmt.Sprintf("관련 공신력 있는 출처 %d", i+1)
}

// PlanExternalLinks returns exactly one authoritative-source category per
// section, pairwise distinct.
func (a *Agent) PlanExternalLinks(ctx context.Context, sections []string) Result[[]string] {
	log := a.log.Stage("external_links")
	if len(sections) == 0 {
		return OK([]string{})
	}
	raw, err := a.complete(ctx, BuildExternalLinkPlanPrompt(sections))
	if err != nil {
		log.Warn("external link plan failed, using generic hints", "cause", err)
		return Degraded(DistinctHints(nil, len(sections)), "external_links", callFailureKind(err), err)
	}
	doc, err := parseJSON(raw)
	if err != nil {
		log.Warn("external link plan malformed, using generic hints", "cause", err)
		return Degraded(DistinctHints(nil, len(sections)), "external_links", FailureMalformed, err)
	}
	items, ok := arrayField(doc, "links")
	if !ok {
		log.Warn("external link plan has no array, using generic hints")
		return Degraded(DistinctHints(nil, len(sections)), "external_links", FailureMalformed, errMalformedJSON)
	}
	hints := DistinctHints(stringsOf(items), len(sections))
	log.Info("external links planned", "hints", len(hints), "returned", len(items))
	return OK(hints)
}

// DistinctHints pads or cuts hints to n entries and replaces duplicates
// (case-insensitive) and blanks with numbered generic hints.
func DistinctHints(hints []string, n int) []string {
	out := make([]string, n)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		h := ""
		if i < len(hints) {
			h = strings.TrimSpace(hints[i])
		}
		key := strings.ToLower(h)
		for j := i; h == "" || seen[key]; j += n {
			h = genericHint(j)
			key = strings.ToLower(h)
		}
		seen[key] = true
		out[i] = h
	}
	return out
}
