package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

var ErrScriptExhausted = errors.New("mock model has no more responses")

// MockModel is a test double for llms.Model. Each call returns the next
// scripted response; prompts are kept for assertions.
type MockModel struct {
	// Err is returned from every call when set.
	Err error

	mu        sync.Mutex
	responses []string
	prompts   []string
}

func NewMockModel(responses ...string) *MockModel {
	return &MockModel{responses: responses}
}

func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt += text.Text
			}
		}
	}

	out, err := m.next(prompt)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: out}},
	}, nil
}

func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Prompts returns every prompt the model has received.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *MockModel) next(prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.responses) == 0 {
		return "", ErrScriptExhausted
	}
	out := m.responses[0]
	m.responses = m.responses[1:]
	return out, nil
}
