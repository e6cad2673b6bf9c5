package generator

import (
	"context"
	"fmt"
	"strings"
)

const (
	minSections        = 6
	maxSections        = 8
	maxRelatedKeywords = 8
)

// FallbackOutline is the skeleton used when planning fails: three generic
// sections with the raw topic as keyword.
func FallbackOutline(topic string) Outline {
	topic = strings.TrimSpace(topic)
	return repairOutline(Outline{
		Title:        fmt.Sprintf("%s 가이드 2026", topic),
		FocusKeyword: topic,
		Slug:         topic + "-2026",
		Description:  fmt.Sprintf("%s: 2026년 최신 트렌드와 전략을 알아보세요.", topic),
		Sections:     []string{"서론", "주요 내용", "결론"},
	}, topic)
}

// PlanOutline asks the provider for the document skeleton. It never fails:
// on a call error or malformed reply it returns FallbackOutline as a degraded
// result.
func (a *Agent) PlanOutline(ctx context.Context, topic string) Result[Outline] {
	log := a.log.Stage("outline")
	raw, err := a.complete(ctx, BuildOutlinePrompt(topic))
	if err != nil {
		log.Warn("outline generation failed, using fallback", "cause", err)
		return Degraded(FallbackOutline(topic), "outline", callFailureKind(err), err)
	}
	doc, err := parseJSON(raw)
	if err != nil || !doc.IsObject() {
		if err == nil {
			err = errMalformedJSON
		}
		log.Warn("outline reply malformed, using fallback", "cause", err)
		return Degraded(FallbackOutline(topic), "outline", FailureMalformed, err)
	}

	var o Outline
	o.Title, _ = stringField(doc, "title")
	o.FocusKeyword, _ = stringField(doc, "focus_keyword")
	o.Slug, _ = stringField(doc, "slug")
	o.Description, _ = stringField(doc, "description")
	o.Sections = stringsOf(doc.Get("sections").Array())
	o.RelatedKeywords = stringsOf(doc.Get("related_keywords").Array())

	if len(o.Sections) == 0 {
		fb := FallbackOutline(topic)
		log.Warn("outline reply has no sections, using fallback skeleton")
		return Degraded(fb, "outline", FailureMalformed, fmt.Errorf("no sections in reply"))
	}

	o = repairOutline(o, topic)
	if len(o.Sections) < minSections {
		log.Warn("outline has fewer sections than planned", "sections", len(o.Sections), "min", minSections)
	}
	log.Info("outline planned",
		"sections", len(o.Sections), "keyword", o.FocusKeyword, "slug", o.Slug)
	return OK(o)
}

// repairOutline applies the post-generation constraints in order: keyword
// shape, slug length/derivation, description prefix and length.
func repairOutline(o Outline, topic string) Outline {
	if o.FocusKeyword == "" {
		o.FocusKeyword = strings.TrimSpace(topic)
	} else {
		o.FocusKeyword = LimitTokens(o.FocusKeyword, MaxKeywordTokens)
	}
	if o.Title == "" {
		o.Title = fmt.Sprintf("%s 가이드 2026", o.FocusKeyword)
	}
	o.Slug = RepairSlug(o.Slug, o.FocusKeyword, topic)
	o.Description = RepairDescription(o.Description, o.FocusKeyword)
	if len(o.Sections) > maxSections {
		o.Sections = o.Sections[:maxSections]
	}
	o.RelatedKeywords = dedupe(o.RelatedKeywords)
	if len(o.RelatedKeywords) > maxRelatedKeywords {
		o.RelatedKeywords = o.RelatedKeywords[:maxRelatedKeywords]
	}
	return o
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(it))
	}
	return out
}
