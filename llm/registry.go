package llm

import (
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/types"
)

// Registry 按 ProviderID 维护已注册的 Provider。
// Select 将调用方的 ProviderSelection 展开为实际调用序列：
// 单一 Provider 时恰好一个；MoA 时按注册顺序返回全部 Provider，
// 保证合成输入的顺序可复现。
type Registry struct {
	mu        sync.RWMutex
	providers map[types.ProviderID]Provider
	order     []types.ProviderID
	logger    *zap.Logger
}

// NewRegistry 创建空注册表。
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[types.ProviderID]Provider),
		logger:    logger,
	}
}

// Register 注册 Provider。重复注册同一 ID 会替换实现但保留原顺序。
func (r *Registry) Register(id types.ProviderID, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[id]; !exists {
		r.order = append(r.order, id)
	}
	r.providers[id] = p
	r.logger.Info("provider registered", zap.String("provider", string(id)))
}

// Get 返回指定 Provider，未注册时返回 nil。
func (r *Registry) Get(id types.ProviderID) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[id]
}

// IDs 按注册顺序返回所有 ProviderID。
func (r *Registry) IDs() []types.ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ProviderID, len(r.order))
	copy(out, r.order)
	return out
}

// Selected 描述一次待执行的 Provider 调用。
type Selected struct {
	ID       types.ProviderID
	Provider Provider
}

// Select 将 ProviderSelection 展开为调用序列。
// 未知选择或选中的 Provider 未注册时返回 InvalidInput。
func (r *Registry) Select(selection types.ProviderSelection) ([]Selected, *types.Error) {
	if !selection.Valid() {
		return nil, types.NewError(types.ErrInvalidInput, "unknown provider selection: "+string(selection))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if selection == types.SelectionMoA {
		if len(r.order) == 0 {
			return nil, types.NewError(types.ErrInvalidInput, "no providers registered")
		}
		out := make([]Selected, 0, len(r.order))
		for _, id := range r.order {
			out = append(out, Selected{ID: id, Provider: r.providers[id]})
		}
		return out, nil
	}

	id := types.ProviderID(selection)
	p, ok := r.providers[id]
	if !ok {
		return nil, types.NewError(types.ErrInvalidInput, "provider not registered: "+string(id))
	}
	return []Selected{{ID: id, Provider: p}}, nil
}
