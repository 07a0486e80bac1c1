package services

import "context"

// MockLLMService is a scriptable LLMService for tests.
type MockLLMService struct {
	GenerateFunc func(ctx context.Context, messages []ChatMessage) (string, error)
}

func (m *MockLLMService) Name() string {
	return "mock"
}

func (m *MockLLMService) Generate(ctx context.Context, messages []ChatMessage) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages)
	}
	return "", nil
}
