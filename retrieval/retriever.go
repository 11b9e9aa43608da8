package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/BaSui01/rfpflow/types"
)

// 检索参数默认值。
const (
	DefaultTopK     = 3
	DefaultMinScore = 0.9
)

// Retriever 相似问答检索接口。
// 返回的匹配按相似度降序排列，分数在 [0,1] 区间。
type Retriever interface {
	Find(ctx context.Context, query types.RequirementItem, topK int, minScore float64) ([]types.SimilarityMatch, error)
}

// ValidateQuery 校验检索参数，非法时返回 INVALID_INPUT。
func ValidateQuery(query types.RequirementItem, topK int, minScore float64) *types.Error {
	if strings.TrimSpace(query.RequirementText) == "" {
		return types.NewError(types.ErrInvalidInput, "requirement text cannot be empty")
	}
	if topK < 1 {
		return types.NewError(types.ErrInvalidInput, "topK must be at least 1")
	}
	if minScore < 0 || minScore > 1 {
		return types.NewError(types.ErrInvalidInput, "minScore must be within [0,1]")
	}
	return nil
}

// Normalize 对原始匹配集做标准化：
// 按分数降序排序，同一来源只保留最高分，过滤低于阈值的项，截断到 topK。
// 排序稳定，分数相同时保持输入顺序。
func Normalize(matches []types.SimilarityMatch, topK int, minScore float64) []types.SimilarityMatch {
	out := make([]types.SimilarityMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minScore {
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	seen := make(map[int64]bool, len(out))
	deduped := out[:0]
	for _, m := range out {
		if seen[m.SourceRequirementID] {
			continue
		}
		seen[m.SourceRequirementID] = true
		deduped = append(deduped, m)
	}

	if len(deduped) > topK {
		deduped = deduped[:topK]
	}
	return deduped
}
