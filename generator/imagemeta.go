package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ImageCount is the fixed number of planned images: one featured, three body.
const ImageCount = 4

var fallbackImageScenes = [ImageCount]struct {
	prompt  string
	alt     string
	caption string
}{
	{"overview illustration", "한눈에 보는 핵심 정리", "핵심 정리"},
	{"step by step process diagram", "단계별 진행 과정", "진행 과정"},
	{"key benefits and checklist", "주요 혜택과 체크리스트", "체크리스트"},
	{"future outlook and strategy", "앞으로의 전망과 전략", "전망과 전략"},
}

// FallbackImageTasks derives the four descriptors from the topic alone. Every
// alt text and caption already carries the keyword.
func FallbackImageTasks(topic, keyword string) []ImageTask {
	topic = strings.TrimSpace(topic)
	if keyword == "" {
		keyword = topic
	}
	tasks := make([]ImageTask, ImageCount)
	for i, scene := range fallbackImageScenes {
		tasks[i] = ImageTask{
			Role:    roleFor(i),
			Prompt:  fmt.Sprintf("%s, %s", topic, scene.prompt),
			AltText: StripAngleBrackets(fmt.Sprintf("%s %s", keyword, scene.alt)),
			Caption: StripAngleBrackets(fmt.Sprintf("%s %s", keyword, scene.caption)),
		}
	}
	return tasks
}

func roleFor(i int) ImageRole {
	if i == 0 {
		return RoleFeatured
	}
	return RoleBody
}

// PlanImages asks for ImageCount descriptors and enforces keyword presence,
// required fields and markup-free attribute text on each. A failed call or a
// malformed reply yields FallbackImageTasks.
func (a *Agent) PlanImages(ctx context.Context, topic, title string, sections []string, keyword string) Result[[]ImageTask] {
	log := a.log.Stage("image_meta")
	raw, err := a.complete(ctx, BuildImageMetaPrompt(topic, title, keyword, sections))
	if err != nil {
		log.Warn("image metadata generation failed, using fallback", "cause", err)
		return Degraded(FallbackImageTasks(topic, keyword), "image_meta", callFailureKind(err), err)
	}
	doc, err := parseJSON(raw)
	if err != nil {
		log.Warn("image metadata malformed, using fallback", "cause", err)
		return Degraded(FallbackImageTasks(topic, keyword), "image_meta", FailureMalformed, err)
	}
	items, ok := arrayField(doc, "images")
	if !ok || len(items) == 0 {
		log.Warn("image metadata has no images, using fallback")
		return Degraded(FallbackImageTasks(topic, keyword), "image_meta", FailureMalformed, fmt.Errorf("no images array"))
	}

	tasks := EnforceImageTasks(items, topic, keyword)
	log.Info("image metadata planned", "images", len(tasks), "returned", len(items))
	return OK(tasks)
}

// EnforceImageTasks normalises reply descriptors into exactly ImageCount
// tasks: element 0 featured, the rest body, missing positions padded from the
// fallback set.
func EnforceImageTasks(items []gjson.Result, topic, keyword string) []ImageTask {
	fallback := FallbackImageTasks(topic, keyword)
	tasks := make([]ImageTask, 0, ImageCount)
	for _, it := range items {
		if len(tasks) == ImageCount {
			break
		}
		if !it.IsObject() {
			continue
		}
		tasks = append(tasks, enforceImageTask(it, keyword))
	}
	for len(tasks) < ImageCount {
		tasks = append(tasks, fallback[len(tasks)])
	}
	for i := range tasks {
		tasks[i].Role = roleFor(i)
	}
	return tasks
}

func enforceImageTask(it gjson.Result, keyword string) ImageTask {
	alt, ok := stringField(it, "alt")
	if !ok || alt == "" {
		alt = keyword
	}
	caption, ok := stringField(it, "caption")
	if !ok || caption == "" {
		caption = keyword
	}
	prompt, ok := stringField(it, "prompt")
	if !ok || prompt == "" {
		prompt = keyword + " illustration"
	}

	alt = StripAngleBrackets(EnsureKeyword(alt, keyword, ": "))
	caption = StripAngleBrackets(EnsureKeyword(caption, keyword, " - "))
	return ImageTask{
		Prompt:  prompt,
		AltText: alt,
		Caption: LimitCaption(caption, StripAngleBrackets(keyword)),
	}
}
