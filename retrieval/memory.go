package retrieval

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/types"
)

// Entry 内存检索的一条历史问答记录。
type Entry struct {
	RequirementID   int64
	RequirementText string
	ResponseText    string
	Reference       string
	Embedding       []float64
}

// MemoryRetriever 内存向量检索，用于测试与小规模数据。
type MemoryRetriever struct {
	embedder Embedder
	entries  []Entry
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryRetriever 创建内存检索器。
func NewMemoryRetriever(embedder Embedder, logger *zap.Logger) *MemoryRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryRetriever{
		embedder: embedder,
		entries:  make([]Entry, 0),
		logger:   logger,
	}
}

// Add 添加历史问答记录。
func (r *MemoryRetriever) Add(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

// Find 按余弦相似度检索最相近的历史问答。
func (r *MemoryRetriever) Find(ctx context.Context, query types.RequirementItem, topK int, minScore float64) ([]types.SimilarityMatch, error) {
	if err := ValidateQuery(query, topK, minScore); err != nil {
		return nil, err
	}

	queryVec, err := r.embedder.Embed(ctx, query.RequirementText)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]types.SimilarityMatch, 0, len(r.entries))
	for _, e := range r.entries {
		if len(e.Embedding) == 0 {
			continue
		}
		// 负相似度压到 0，Score 始终落在 [0,1]
		score := CosineSimilarity(queryVec, e.Embedding)
		if score < 0 {
			score = 0
		}
		matches = append(matches, types.SimilarityMatch{
			SourceRequirementID:    e.RequirementID,
			Score:                  score,
			MatchedRequirementText: e.RequirementText,
			MatchedResponseText:    e.ResponseText,
			ReferenceCitation:      e.Reference,
		})
	}

	result := Normalize(matches, topK, minScore)
	r.logger.Debug("memory retrieval completed",
		zap.Int64("requirement_id", query.ID),
		zap.Int("candidates", len(matches)),
		zap.Int("matches", len(result)),
	)
	return result, nil
}

// CosineSimilarity 计算两个向量的余弦相似度。
// 维度不一致或零向量返回 0。浮点舍入可能让商略微越界，
// 结果被钳制在 [-1,1]。
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}
