package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/rfpflow/types"
)

// MockStore 是 store.ResultStore 的模拟实现，
// 支持按需注入保存/加载错误。
type MockStore struct {
	mu sync.Mutex

	requirements map[int64]types.RequirementItem
	outcomes     map[int64]types.GenerationOutcome
	matches      map[int64][]types.SimilarityMatch

	saveErr error
	loadErr error

	saveCount int
}

// NewMockStore 创建新的 MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		requirements: make(map[int64]types.RequirementItem),
		outcomes:     make(map[int64]types.GenerationOutcome),
		matches:      make(map[int64][]types.SimilarityMatch),
	}
}

// WithRequirements 预置需求条目
func (m *MockStore) WithRequirements(items ...types.RequirementItem) *MockStore {
	for _, item := range items {
		m.requirements[item.ID] = item
	}
	return m
}

// WithSaveError 注入保存错误
func (m *MockStore) WithSaveError(err error) *MockStore {
	m.saveErr = err
	return m
}

// WithLoadError 注入加载错误
func (m *MockStore) WithLoadError(err error) *MockStore {
	m.loadErr = err
	return m
}

func (m *MockStore) SaveOutcome(_ context.Context, outcome *types.GenerationOutcome, matches []types.SimilarityMatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCount++
	if m.saveErr != nil {
		return m.saveErr
	}
	if outcome == nil {
		return types.NewError(types.ErrInvalidInput, "outcome cannot be nil")
	}
	m.outcomes[outcome.RequirementID] = *outcome
	m.matches[outcome.RequirementID] = append([]types.SimilarityMatch(nil), matches...)
	return nil
}

func (m *MockStore) LoadRequirement(_ context.Context, id int64) (*types.RequirementItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	item, ok := m.requirements[id]
	if !ok {
		return nil, types.NewError(types.ErrRequirementNotFound, "requirement does not exist")
	}
	out := item
	return &out, nil
}

// Outcome 返回已保存的生成结果
func (m *MockStore) Outcome(id int64) (types.GenerationOutcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outcomes[id]
	return o, ok
}

// Matches 返回已保存的相似问答引用
func (m *MockStore) Matches(id int64) []types.SimilarityMatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.SimilarityMatch(nil), m.matches[id]...)
}

// SaveCount 返回保存调用次数
func (m *MockStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCount
}
