package store

import (
	"context"

	"github.com/BaSui01/rfpflow/types"
)

// ResultStore 生成结果持久化接口。
// SaveOutcome 幂等：同一需求重复保存时覆盖旧结果。
type ResultStore interface {
	// SaveOutcome 保存一条需求的生成结果与相似问答引用。
	SaveOutcome(ctx context.Context, outcome *types.GenerationOutcome, matches []types.SimilarityMatch) error

	// LoadRequirement 按 ID 加载需求条目。
	// 不存在时返回 REQUIREMENT_NOT_FOUND。
	LoadRequirement(ctx context.Context, id int64) (*types.RequirementItem, error)
}

// providerLabel 根据贡献结果推导 model_provider 列的取值：
// 多 Provider 参与记为 moa，否则记单一 Provider。
func providerLabel(outcome *types.GenerationOutcome) string {
	if len(outcome.ContributingProviderResults) > 1 {
		return string(types.SelectionMoA)
	}
	if len(outcome.ContributingProviderResults) == 1 {
		return string(outcome.ContributingProviderResults[0].ProviderID)
	}
	return ""
}
