package generator

import (
	"context"
	"fmt"
	"html"
	"strings"
)

const faqHeading = "자주 묻는 질문"

// GenerateSection writes the body of one heading with its allocated links
// injected as instructions. The returned fragment always opens with the
// heading markup; a failed call degrades to FallbackSection.
func (a *Agent) GenerateSection(ctx context.Context, topic, keyword string, draft SectionDraft) Result[SectionDraft] {
	log := a.log.Stage("section").With("heading", draft.Heading)
	raw, err := a.complete(ctx, BuildSectionPrompt(SectionRequest{
		Topic:        topic,
		Heading:      draft.Heading,
		Keyword:      keyword,
		Link:         draft.Link,
		ExternalHint: draft.ExternalHint,
	}))
	if err != nil {
		log.Warn("section generation failed, using fallback", "cause", err)
		draft.HTML = FallbackSection(draft, keyword)
		return Degraded(draft, "section", callFailureKind(err), err)
	}
	fragment := CleanFragment(raw)
	if fragment == "" {
		log.Warn("section reply empty, using fallback")
		draft.HTML = FallbackSection(draft, keyword)
		return Degraded(draft, "section", FailureEmpty, ErrEmptyResponse)
	}
	draft.HTML = EnsureHeading(fragment, draft.Heading)
	log.Debug("section generated", "chars", len(draft.HTML))
	return OK(draft)
}

// FallbackSection is a minimal fragment that still carries the heading and
// the allocated internal link inline.
func FallbackSection(draft SectionDraft, keyword string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<p>%s에 대한 %s 핵심 내용을 정리했습니다.", html.EscapeString(draft.Heading), html.EscapeString(keyword)))
	if draft.Link != nil {
		sb.WriteString(fmt.Sprintf(" 자세한 내용은 <a href=\"%s\" target=\"_blank\">%s</a>에서 확인할 수 있습니다.",
			html.EscapeString(draft.Link.URL), html.EscapeString(draft.Link.Title)))
	}
	sb.WriteString("</p>")
	return EnsureHeading(sb.String(), draft.Heading)
}

// GenerateIntro writes the opening fragment.
func (a *Agent) GenerateIntro(ctx context.Context, topic, keyword string) Result[string] {
	log := a.log.Stage("intro")
	raw, err := a.complete(ctx, BuildIntroPrompt(topic, keyword))
	if err != nil {
		log.Warn("intro generation failed, using fallback", "cause", err)
		return Degraded(FallbackIntro(topic, keyword), "intro", callFailureKind(err), err)
	}
	fragment := CleanFragment(raw)
	if fragment == "" {
		return Degraded(FallbackIntro(topic, keyword), "intro", FailureEmpty, ErrEmptyResponse)
	}
	return OK(fragment)
}

func FallbackIntro(topic, keyword string) string {
	return fmt.Sprintf("<p>%s, 지금 꼭 알아야 할 내용을 정리했습니다.</p>\n<p>이 글에서는 %s의 핵심을 차근차근 살펴봅니다.</p>",
		html.EscapeString(keyword), html.EscapeString(topic))
}

// GenerateFAQ writes the closing question-and-answer fragment.
func (a *Agent) GenerateFAQ(ctx context.Context, topic, keyword string) Result[string] {
	log := a.log.Stage("faq")
	raw, err := a.complete(ctx, BuildFAQPrompt(topic, keyword))
	if err != nil {
		log.Warn("faq generation failed, using fallback", "cause", err)
		return Degraded(FallbackFAQ(keyword), "faq", callFailureKind(err), err)
	}
	fragment := CleanFragment(raw)
	if fragment == "" {
		return Degraded(FallbackFAQ(keyword), "faq", FailureEmpty, ErrEmptyResponse)
	}
	return OK(EnsureHeading(fragment, faqHeading))
}

func FallbackFAQ(keyword string) string {
	kw := html.EscapeString(keyword)
	return fmt.Sprintf("<h2>%s</h2>\n<details><summary>%s 신청은 어떻게 하나요?</summary><p>%s 관련 공식 안내 페이지에서 최신 절차를 확인하세요.</p></details>",
		faqHeading, kw, kw)
}
