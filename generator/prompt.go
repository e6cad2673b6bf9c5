package generator

import (
	"fmt"
	"strings"
)

// PromptKind names the generation stage a prompt belongs to.
type PromptKind string

const (
	KindOutline       PromptKind = "outline"
	KindImageMeta     PromptKind = "image_meta"
	KindExternalLinks PromptKind = "external_links"
	KindIntro         PromptKind = "intro"
	KindSection       PromptKind = "section"
	KindFAQ           PromptKind = "faq"
)

// Prompt is the message set sent to the LLM.
type Prompt struct {
	Kind PromptKind
	// Subject is the heading for section prompts, the topic otherwise.
	Subject string
	System  string
	User    string
	// JSON asks the provider for a single JSON object.
	JSON bool
}

const htmlOnlySystem = "당신은 한국어 SEO 블로그 전문 작가입니다. 요청된 형식만 출력하고 설명을 덧붙이지 마세요."

const jsonOnlySystem = "당신은 한국어 SEO 블로그 기획자입니다. 반드시 하나의 JSON 객체만 출력하세요."

// BuildOutlinePrompt asks for title, keyword, slug, description, headings and
// related keywords.
func BuildOutlinePrompt(topic string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("주제 '%s'의 블로그 글 개요를 JSON 객체로 작성하세요.\n", topic))
	sb.WriteString("필드:\n")
	sb.WriteString("- focus_keyword: 검색량이 많은 짧은 명사형 검색어 1~2단어 (3단어 초과 금지, 문장형 금지).\n")
	sb.WriteString("- title: 핵심 키워드를 포함한 클릭을 부르는 제목, 반드시 '2026' 포함.\n")
	sb.WriteString("- slug: 영문 소문자와 하이픈만 사용한 슬러그, 50자 이내 (예: youth-rent-support-2026).\n")
	sb.WriteString("- description: 160자 이내 메타 설명, 반드시 focus_keyword로 시작.\n")
	sb.WriteString("- sections: 본문 H2 소제목 6~8개 배열.\n")
	sb.WriteString("- related_keywords: 연관 검색어(LSI) 8개 배열.\n")
	return Prompt{
		Kind:    KindOutline,
		Subject: topic,
		System:  jsonOnlySystem,
		User:    sb.String(),
		JSON:    true,
	}
}

// BuildImageMetaPrompt asks for the four image descriptors.
func BuildImageMetaPrompt(topic, title, keyword string, sections []string) Prompt {
	var sb strings.Builder
	sb.WriteString("블로그 글에 들어갈 이미지 4장의 메타데이터를 JSON 객체로 작성하세요.\n")
	sb.WriteString(fmt.Sprintf("주제: %s\n제목: %s\n핵심 키워드: %s\n섹션: %s\n", topic, title, keyword, strings.Join(sections, ", ")))
	sb.WriteString("요구사항:\n")
	sb.WriteString("- 정확히 4개. 첫 번째는 type=\"featured\", 나머지 3개는 type=\"body\".\n")
	sb.WriteString("- prompt: 이미지 생성용 구체적인 영어 프롬프트 (modern, high quality, infographic style).\n")
	sb.WriteString(fmt.Sprintf("- alt: '%s'를 반드시 포함해 이미지를 묘사하는 한국어 대체 텍스트.\n", keyword))
	sb.WriteString(fmt.Sprintf("- caption: '%s'를 반드시 포함한 20자 이내 한국어 캡션.\n", keyword))
	sb.WriteString(`출력 형식: {"images":[{"type":"featured","prompt":"...","alt":"...","caption":"..."}, ...]}`)
	return Prompt{
		Kind:    KindImageMeta,
		Subject: topic,
		System:  jsonOnlySystem,
		User:    sb.String(),
		JSON:    true,
	}
}

// BuildExternalLinkPlanPrompt asks for one distinct authoritative source
// category per section.
func BuildExternalLinkPlanPrompt(sections []string) Prompt {
	var sb strings.Builder
	sb.WriteString("각 섹션에 인용할 공신력 있는 외부 출처의 종류를 섹션마다 하나씩 계획하세요.\n")
	sb.WriteString("섹션 목록:\n")
	for i, s := range sections {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
	}
	sb.WriteString("규칙:\n")
	sb.WriteString("- 섹션마다 서로 다른 출처를 지정 (같은 기관 반복 금지).\n")
	sb.WriteString("- 정부 부처(.go.kr), 통계청, 법제처, 주요 언론사, 공식 협회 등. 위키백과 금지.\n")
	sb.WriteString("- URL이 아니라 출처의 종류와 기관명을 적을 것 (예: \"통계청(청년고용동향)\").\n")
	sb.WriteString(fmt.Sprintf(`출력 형식: {"links":["...", ...]} (정확히 %d개)`, len(sections)))
	return Prompt{
		Kind:    KindExternalLinks,
		Subject: strings.Join(sections, ", "),
		System:  jsonOnlySystem,
		User:    sb.String(),
		JSON:    true,
	}
}

// BuildIntroPrompt asks for the opening fragment.
func BuildIntroPrompt(topic, keyword string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("주제 '%s'의 서론을 HTML로 작성하세요.\n", topic))
	sb.WriteString(fmt.Sprintf("- 첫 문장은 '%s'(으)로 시작.\n", keyword))
	sb.WriteString("- 독자의 문제 의식을 자극할 것. 분량 300~500자.\n")
	sb.WriteString("- 한 문단은 2~3문장 이내, <p> 태그로 자주 나눌 것.\n")
	sb.WriteString("- 순수 HTML만 출력 (``` 금지, 제목 태그 금지).\n")
	return Prompt{Kind: KindIntro, Subject: topic, System: htmlOnlySystem, User: sb.String()}
}

// SectionRequest is everything the section prompt needs.
type SectionRequest struct {
	Topic        string
	Heading      string
	Keyword      string
	Link         *LinkTarget
	ExternalHint string
}

// BuildSectionPrompt injects the allocated links and density/length/placement
// rules for one heading.
func BuildSectionPrompt(req SectionRequest) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("블로그 글 '%s'의 소제목 '%s' 본문을 HTML로 상세히 작성하세요.\n\n", req.Topic, req.Heading))

	sb.WriteString("[기본 규칙]\n")
	sb.WriteString(fmt.Sprintf("- <h2>%s</h2> 로 시작하고 이후 p, ul/ol, strong 태그를 사용.\n", req.Heading))
	sb.WriteString("- 구체적인 정보, 수치, 예시를 포함하고 모호한 표현은 피할 것.\n")
	sb.WriteString(fmt.Sprintf("- 키워드 '%s'는 섹션 전체에서 최대 2~3회만 사용 (밀도 2.5%% 미만). 나머지는 대명사나 유의어로 대체.\n", req.Keyword))
	sb.WriteString("- 한 문단은 2~3문장 이내, 핵심 문장은 <strong>으로 강조.\n")
	sb.WriteString("- 분량: 공백 포함 약 500자.\n")
	sb.WriteString("- '[이미지 설명]', '그림 1' 같은 이미지 관련 문구는 절대 쓰지 말 것.\n\n")

	sb.WriteString("[외부 링크]\n")
	if req.ExternalHint != "" {
		sb.WriteString(fmt.Sprintf("- 권장 출처: %s. 이 기관의 실제로 존재하는 관련 페이지 URL을 사용할 것.\n", req.ExternalHint))
		sb.WriteString(fmt.Sprintf("- 형식: <strong><a href=\"https://...\" target=\"_blank\">[%s 바로가기]</a></strong>\n", req.ExternalHint))
	}
	sb.WriteString("- 다른 섹션과 겹치지 않는 출처를 쓰고 위키백과와 존재하지 않는 URL은 금지.\n\n")

	sb.WriteString("[내부 링크]\n")
	if req.Link != nil {
		sb.WriteString(fmt.Sprintf("- 제목: %s\n- URL: %s\n", req.Link.Title, req.Link.URL))
		sb.WriteString("- 반드시 설명 문장 중간에 자연스럽게 녹일 것. 섹션 끝에 '관련 글:' 식으로 붙이는 것은 금지.\n")
		sb.WriteString(fmt.Sprintf("- 예: ...이때 <a href=\"%s\" target=\"_blank\">%s</a>를 활용하면...\n", req.Link.URL, req.Link.Title))
		sb.WriteString("- 앵커 텍스트는 바꿔도 되지만 URL은 절대 바꾸지 말 것.\n")
	} else {
		sb.WriteString("- 내부 링크 없음.\n")
	}
	sb.WriteString("\n순수 HTML만 출력 (``` 금지).")

	return Prompt{Kind: KindSection, Subject: req.Heading, System: htmlOnlySystem, User: sb.String()}
}

// BuildFAQPrompt asks for the closing FAQ fragment.
func BuildFAQPrompt(topic, keyword string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("주제 '%s'에 대해 자주 묻는 질문 3개와 답변을 HTML로 작성하세요.\n", topic))
	sb.WriteString("- <h2>자주 묻는 질문</h2> 으로 시작.\n")
	sb.WriteString("- 각 항목은 <details><summary>질문</summary><p>답변</p></details> 구조.\n")
	sb.WriteString(fmt.Sprintf("- 답변에 '%s'를 포함하고 2025~2026년 최신 동향을 반영.\n", keyword))
	sb.WriteString("- 순수 HTML만 출력 (``` 금지).\n")
	return Prompt{Kind: KindFAQ, Subject: topic, System: htmlOnlySystem, User: sb.String()}
}
