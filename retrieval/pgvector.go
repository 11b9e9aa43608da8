package retrieval

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/rfpflow/types"
)

// PGVectorRetriever 基于 PostgreSQL pgvector 扩展的检索实现。
// embeddings 表保存历史问答及其向量，<=> 为余弦距离运算符，
// 相似度 = 1 - 距离。
type PGVectorRetriever struct {
	db       *gorm.DB
	embedder Embedder
	logger   *zap.Logger
}

// NewPGVectorRetriever 创建 pgvector 检索器。
func NewPGVectorRetriever(db *gorm.DB, embedder Embedder, logger *zap.Logger) *PGVectorRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGVectorRetriever{db: db, embedder: embedder, logger: logger}
}

type embeddingRow struct {
	ID          int64   `gorm:"column:id"`
	Requirement string  `gorm:"column:requirement"`
	Response    string  `gorm:"column:response"`
	Reference   string  `gorm:"column:reference"`
	Similarity  float64 `gorm:"column:similarity"`
}

const similarityQuery = `
SELECT id, requirement, response, reference,
       1 - (embedding <=> ?::vector) AS similarity
FROM embeddings
ORDER BY embedding <=> ?::vector
LIMIT ?`

// Find 检索与查询语义最相近的历史问答。
func (r *PGVectorRetriever) Find(ctx context.Context, query types.RequirementItem, topK int, minScore float64) ([]types.SimilarityMatch, error) {
	if err := ValidateQuery(query, topK, minScore); err != nil {
		return nil, err
	}

	queryVec, err := r.embedder.Embed(ctx, query.RequirementText)
	if err != nil {
		return nil, err
	}
	vec := vectorLiteral(queryVec)

	var rows []embeddingRow
	if err := r.db.WithContext(ctx).Raw(similarityQuery, vec, vec, topK).Scan(&rows).Error; err != nil {
		r.logger.Error("pgvector query failed",
			zap.Int64("requirement_id", query.ID),
			zap.Error(err),
		)
		return nil, types.NewError(types.ErrRetrievalUnavailable, "similarity query failed").
			WithCause(err).WithRetryable(true)
	}

	matches := make([]types.SimilarityMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, types.SimilarityMatch{
			SourceRequirementID:    row.ID,
			Score:                  row.Similarity,
			MatchedRequirementText: row.Requirement,
			MatchedResponseText:    row.Response,
			ReferenceCitation:      row.Reference,
		})
	}

	result := Normalize(matches, topK, minScore)
	r.logger.Debug("pgvector retrieval completed",
		zap.Int64("requirement_id", query.ID),
		zap.Int("rows", len(rows)),
		zap.Int("matches", len(result)),
	)
	return result, nil
}

// vectorLiteral 将向量序列化为 pgvector 的字面量格式 [x1,x2,...]。
func vectorLiteral(vec []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
