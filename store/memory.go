package store

import (
	"context"
	"sync"

	"github.com/BaSui01/rfpflow/types"
)

// MemoryStore 内存存储，用于测试与演示。
type MemoryStore struct {
	mu           sync.RWMutex
	requirements map[int64]types.RequirementItem
	outcomes     map[int64]types.GenerationOutcome
	matches      map[int64][]types.SimilarityMatch
}

// NewMemoryStore 创建内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requirements: make(map[int64]types.RequirementItem),
		outcomes:     make(map[int64]types.GenerationOutcome),
		matches:      make(map[int64][]types.SimilarityMatch),
	}
}

// AddRequirement 预置需求条目。
func (s *MemoryStore) AddRequirement(items ...types.RequirementItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.requirements[item.ID] = item
	}
}

// SaveOutcome 保存生成结果。需求不存在时返回 REQUIREMENT_NOT_FOUND。
func (s *MemoryStore) SaveOutcome(_ context.Context, outcome *types.GenerationOutcome, matches []types.SimilarityMatch) error {
	if outcome == nil {
		return types.NewError(types.ErrInvalidInput, "outcome cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requirements[outcome.RequirementID]
	if !ok {
		return types.NewError(types.ErrRequirementNotFound, "requirement does not exist")
	}

	item.FinalResponse = outcome.FinalAnswerText
	s.requirements[outcome.RequirementID] = item
	s.outcomes[outcome.RequirementID] = *outcome
	s.matches[outcome.RequirementID] = append([]types.SimilarityMatch(nil), matches...)
	return nil
}

// LoadRequirement 按 ID 加载需求条目。
func (s *MemoryStore) LoadRequirement(_ context.Context, id int64) (*types.RequirementItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.requirements[id]
	if !ok {
		return nil, types.NewError(types.ErrRequirementNotFound, "requirement does not exist")
	}
	out := item
	return &out, nil
}

// Outcome 返回已保存的生成结果，测试用。
func (s *MemoryStore) Outcome(id int64) (types.GenerationOutcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.outcomes[id]
	return o, ok
}

// Matches 返回已保存的相似问答引用，测试用。
func (s *MemoryStore) Matches(id int64) []types.SimilarityMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.SimilarityMatch(nil), s.matches[id]...)
}
