package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/types"
)

// stubEmbedder 按预置向量表返回嵌入，未知文本返回默认向量。
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

func TestMemoryRetriever_Find(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"audit trail": {1, 0, 0},
	}}
	r := NewMemoryRetriever(emb, zap.NewNop())
	r.Add(
		Entry{RequirementID: 1, RequirementText: "audit logging", ResponseText: "We log everything.", Embedding: []float64{0.99, 0.1, 0}},
		Entry{RequirementID: 2, RequirementText: "dashboards", ResponseText: "Dashboards exist.", Embedding: []float64{0, 1, 0}},
		Entry{RequirementID: 3, RequirementText: "change history", ResponseText: "History retained.", Embedding: []float64{0.97, 0.2, 0}},
	)

	matches, err := r.Find(context.Background(), types.RequirementItem{ID: 10, RequirementText: "audit trail"}, 2, 0.9)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].SourceRequirementID)
	assert.Equal(t, int64(3), matches[1].SourceRequirementID)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestMemoryRetriever_EmptyStore(t *testing.T) {
	r := NewMemoryRetriever(&stubEmbedder{}, zap.NewNop())

	matches, err := r.Find(context.Background(), types.RequirementItem{ID: 1, RequirementText: "anything"}, 3, 0.9)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryRetriever_EmbedderFailure(t *testing.T) {
	r := NewMemoryRetriever(&stubEmbedder{
		err: types.NewError(types.ErrRetrievalUnavailable, "embedding api down"),
	}, zap.NewNop())
	r.Add(Entry{RequirementID: 1, Embedding: []float64{1, 0, 0}})

	_, err := r.Find(context.Background(), types.RequirementItem{ID: 1, RequirementText: "q"}, 3, 0.9)
	require.Error(t, err)
	assert.Equal(t, types.ErrRetrievalUnavailable, types.GetErrorCode(err))
}

func TestMemoryRetriever_InvalidQuery(t *testing.T) {
	r := NewMemoryRetriever(&stubEmbedder{}, zap.NewNop())

	_, err := r.Find(context.Background(), types.RequirementItem{ID: 1}, 3, 0.9)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidInput, types.GetErrorCode(err))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}), "dimension mismatch")
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 0}), "zero vector")
}

func TestCosineSimilarity_ClampedToUnitRange(t *testing.T) {
	// 浮点舍入会让自相似度略超 1，钳制后不得越界
	vectors := [][]float64{
		{0.1, 0.2, 0.3, 0.4, 0.5},
		{1e-3, 7.7, -2.3, 0.013},
		{9.999999, -9.999999, 3.333333},
	}
	for _, v := range vectors {
		self := CosineSimilarity(v, v)
		assert.LessOrEqual(t, self, 1.0)
		assert.InDelta(t, 1.0, self, 1e-6)

		neg := make([]float64, len(v))
		for i := range v {
			neg[i] = -v[i]
		}
		opposite := CosineSimilarity(v, neg)
		assert.GreaterOrEqual(t, opposite, -1.0)
		assert.InDelta(t, -1.0, opposite, 1e-6)
	}
}

func TestMemoryRetriever_NegativeScoresFloorAtZero(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"query": {1, 0, 0},
	}}
	r := NewMemoryRetriever(emb, zap.NewNop())
	r.Add(Entry{RequirementID: 1, ResponseText: "opposite", Embedding: []float64{-1, 0, 0}})

	matches, err := r.Find(context.Background(), types.RequirementItem{ID: 5, RequirementText: "query"}, 3, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0.0, matches[0].Score, "anti-correlated entries report score 0, not a negative value")
}
