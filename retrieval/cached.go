package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/internal/cache"
	"github.com/BaSui01/rfpflow/internal/metrics"
	"github.com/BaSui01/rfpflow/types"
)

// retrievalCacheType 缓存指标的 cache_type 标签值。
const retrievalCacheType = "retrieval"

// DefaultCacheTTL 检索结果缓存的默认有效期。
const DefaultCacheTTL = 10 * time.Minute

// CachedRetriever 在任意 Retriever 之上增加 Redis 缓存。
// 缓存键包含需求 ID 与检索参数，参数变化时自然失效。
// 缓存故障不阻断检索，直接回源。
type CachedRetriever struct {
	inner   Retriever
	cache   *cache.Manager
	ttl     time.Duration
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewCachedRetriever 创建带缓存的检索器。ttl 为 0 时使用默认值。
func NewCachedRetriever(inner Retriever, cm *cache.Manager, ttl time.Duration, logger *zap.Logger) *CachedRetriever {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRetriever{inner: inner, cache: cm, ttl: ttl, logger: logger}
}

// WithMetrics 注入指标收集器，命中与未命中计入缓存指标。
// 返回自身便于链式调用。
func (r *CachedRetriever) WithMetrics(c *metrics.Collector) *CachedRetriever {
	r.metrics = c
	return r
}

func cacheKey(requirementID int64, topK int, minScore float64) string {
	return fmt.Sprintf("retrieval:%d:%d:%.2f", requirementID, topK, minScore)
}

// Find 先查缓存，未命中时回源并回填。
func (r *CachedRetriever) Find(ctx context.Context, query types.RequirementItem, topK int, minScore float64) ([]types.SimilarityMatch, error) {
	if err := ValidateQuery(query, topK, minScore); err != nil {
		return nil, err
	}

	key := cacheKey(query.ID, topK, minScore)

	var cached []types.SimilarityMatch
	err := r.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		if r.metrics != nil {
			r.metrics.RecordCacheHit(retrievalCacheType)
		}
		r.logger.Debug("retrieval cache hit", zap.String("key", key))
		return cached, nil
	}
	if cache.IsCacheMiss(err) {
		if r.metrics != nil {
			r.metrics.RecordCacheMiss(retrievalCacheType)
		}
	} else {
		r.logger.Warn("retrieval cache read failed", zap.String("key", key), zap.Error(err))
	}

	matches, err := r.inner.Find(ctx, query, topK, minScore)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetJSON(ctx, key, matches, r.ttl); err != nil {
		r.logger.Warn("retrieval cache write failed", zap.String("key", key), zap.Error(err))
	}
	return matches, nil
}
