// MockProvider 的 LLM 提供商测试模拟实现。
//
// 支持固定响应、延迟与错误注入场景。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/rfpflow/llm"
)

// MockProvider 是 llm.Provider 的模拟实现
type MockProvider struct {
	mu sync.Mutex

	name     string
	response string
	err      error
	delay    time.Duration

	// failAfter > 0 时，第 N 次之后的调用返回 err
	failAfter int
	callCount int

	completionFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
	calls          []*llm.ChatRequest
}

// NewMockProvider 创建新的 MockProvider
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:     name,
		response: "Mock response",
	}
}

// WithResponse 设置固定响应内容
func (m *MockProvider) WithResponse(content string) *MockProvider {
	m.response = content
	return m
}

// WithError 设置固定错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// WithDelay 设置模拟延迟
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.delay = d
	return m
}

// WithFailAfter 设置第 N 次调用之后开始失败
func (m *MockProvider) WithFailAfter(n int, err error) *MockProvider {
	m.failAfter = n
	m.err = err
	return m
}

// WithCompletionFunc 完全自定义 Completion 行为
func (m *MockProvider) WithCompletionFunc(fn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)) *MockProvider {
	m.completionFunc = fn
	return m
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.callCount++
	count := m.callCount
	m.calls = append(m.calls, req)
	fn := m.completionFunc
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fn != nil {
		return fn(ctx, req)
	}

	if m.err != nil && (m.failAfter == 0 || count > m.failAfter) {
		return nil, m.err
	}

	return &llm.ChatResponse{
		Provider:  m.name,
		Model:     "mock-model",
		Content:   m.response,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockProvider) HealthCheck(context.Context) (*llm.HealthStatus, error) {
	if m.err != nil {
		return &llm.HealthStatus{Healthy: false}, m.err
	}
	return &llm.HealthStatus{Healthy: true}, nil
}

// CallCount 返回调用次数
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls 返回调用记录
func (m *MockProvider) Calls() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llm.ChatRequest(nil), m.calls...)
}
