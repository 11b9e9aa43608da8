package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/rfpflow/types"
)

// MockRetriever 是 retrieval.Retriever 的模拟实现
type MockRetriever struct {
	mu sync.Mutex

	matches   []types.SimilarityMatch
	err       error
	callCount int
}

// NewMockRetriever 创建新的 MockRetriever
func NewMockRetriever() *MockRetriever {
	return &MockRetriever{}
}

// WithMatches 设置固定匹配结果
func (m *MockRetriever) WithMatches(matches ...types.SimilarityMatch) *MockRetriever {
	m.matches = matches
	return m
}

// WithError 设置固定错误
func (m *MockRetriever) WithError(err error) *MockRetriever {
	m.err = err
	return m
}

func (m *MockRetriever) Find(_ context.Context, _ types.RequirementItem, _ int, _ float64) ([]types.SimilarityMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return append([]types.SimilarityMatch(nil), m.matches...), nil
}

// CallCount 返回调用次数
func (m *MockRetriever) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
