package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLLM replays scripted replies per prompt kind without calling a provider.
// Replies for a kind are consumed in order; the last one repeats. Kinds with no
// script get a small generated fragment so offline runs still assemble.
type MockLLM struct {
	mu      sync.Mutex
	Replies map[PromptKind][]string
	Errors  map[PromptKind]error
	Calls   []Prompt
}

func (m *MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, prompt)

	if err := m.Errors[prompt.Kind]; err != nil {
		return "", err
	}
	if replies := m.Replies[prompt.Kind]; len(replies) > 0 {
		reply := replies[0]
		if len(replies) > 1 {
			m.Replies[prompt.Kind] = replies[1:]
		}
		return reply, nil
	}

	switch prompt.Kind {
	case KindSection:
		return fmt.Sprintf("<h2>%s</h2>\n<p>%s</p>", prompt.Subject, "자동 생성된 섹션 본문입니다."), nil
	case KindIntro:
		return "<p>자동 생성된 서론입니다.</p>", nil
	case KindFAQ:
		return "<h2>자주 묻는 질문</h2>\n<details><summary>질문</summary><p>답변</p></details>", nil
	}
	return "", ErrEmptyResponse
}

// CallsOf returns the recorded prompts of one kind.
func (m *MockLLM) CallsOf(kind PromptKind) []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Prompt
	for _, p := range m.Calls {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// joinedUser is handy in tests asserting prompt content.
func (m *MockLLM) joinedUser(kind PromptKind) string {
	var parts []string
	for _, p := range m.CallsOf(kind) {
		parts = append(parts, p.User)
	}
	return strings.Join(parts, "\n---\n")
}
