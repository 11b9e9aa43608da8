package synthesis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/internal/metrics"
	"github.com/BaSui01/rfpflow/llm"
	"github.com/BaSui01/rfpflow/prompt"
	"github.com/BaSui01/rfpflow/types"
)

// DefaultTimeout 合成调用的默认超时。
const DefaultTimeout = 30 * time.Second

// Engine 候选回答合成接口。
// results 为各 Provider 按调用顺序产出的结果，含失败项。
// 没有任何成功候选时返回 ALL_PROVIDERS_FAILED。
type Engine interface {
	Synthesize(ctx context.Context, requirementText string, results []types.ProviderResult) (string, error)
}

func successes(results []types.ProviderResult) []types.ProviderResult {
	out := make([]types.ProviderResult, 0, len(results))
	for _, r := range results {
		if r.Status == types.ResultOK && r.AnswerText != "" {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// LLM 合成引擎
// =============================================================================

// LLMEngine 调用合成模型生成最终回答。
type LLMEngine struct {
	provider llm.Provider
	builder  *prompt.Builder
	timeout  time.Duration
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewLLMEngine 创建 LLM 合成引擎。timeout 为 0 时使用默认超时。
func NewLLMEngine(provider llm.Provider, builder *prompt.Builder, timeout time.Duration, logger *zap.Logger) *LLMEngine {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMEngine{provider: provider, builder: builder, timeout: timeout, logger: logger}
}

// WithMetrics 注入指标收集器，降级到候选回答时计数。
// 返回自身便于链式调用。
func (e *LLMEngine) WithMetrics(c *metrics.Collector) *LLMEngine {
	e.metrics = c
	return e
}

// fallback 记录一次合成降级并返回首个成功候选。
func (e *LLMEngine) fallback(candidate types.ProviderResult) string {
	if e.metrics != nil {
		e.metrics.RecordSynthesisFallback()
	}
	return candidate.AnswerText
}

// Synthesize 合成候选回答：
// 0 个成功候选报错；1 个直接返回；多个调用合成模型，
// 失败时降级为调用顺序中的首个成功候选。
func (e *LLMEngine) Synthesize(ctx context.Context, requirementText string, results []types.ProviderResult) (string, error) {
	ok := successes(results)
	switch len(ok) {
	case 0:
		return "", types.NewError(types.ErrAllProvidersFailed, "no successful candidate answers")
	case 1:
		return ok[0].AnswerText, nil
	}

	msgs, err := e.builder.BuildSynthesis(requirementText, results)
	if err != nil {
		e.logger.Warn("synthesis prompt build failed, falling back to first candidate",
			zap.String("fallback_provider", string(ok[0].ProviderID)),
			zap.Error(err),
		)
		return e.fallback(ok[0]), nil
	}

	resp, err := e.provider.Completion(ctx, &llm.ChatRequest{
		Messages: msgs,
		Timeout:  e.timeout,
	})
	if err != nil {
		// 合成失败不致命，候选回答本身已经可用
		e.logger.Warn("synthesis call failed, falling back to first candidate",
			zap.String("error_kind", string(types.ErrSynthesisUnavailable)),
			zap.String("fallback_provider", string(ok[0].ProviderID)),
			zap.Error(err),
		)
		return e.fallback(ok[0]), nil
	}
	if resp.Content == "" {
		e.logger.Warn("synthesis returned empty content, falling back to first candidate",
			zap.String("fallback_provider", string(ok[0].ProviderID)),
		)
		return e.fallback(ok[0]), nil
	}

	e.logger.Debug("synthesis completed",
		zap.Int("candidates", len(ok)),
		zap.String("model", resp.Model),
	)
	return resp.Content, nil
}

// =============================================================================
// 首答引擎
// =============================================================================

// FirstAnswerEngine 取调用顺序中首个成功候选，不做模型合成。
// 用于测试与禁用合成的部署。
type FirstAnswerEngine struct{}

// NewFirstAnswerEngine 创建首答引擎。
func NewFirstAnswerEngine() *FirstAnswerEngine {
	return &FirstAnswerEngine{}
}

func (e *FirstAnswerEngine) Synthesize(_ context.Context, _ string, results []types.ProviderResult) (string, error) {
	ok := successes(results)
	if len(ok) == 0 {
		return "", types.NewError(types.ErrAllProvidersFailed, "no successful candidate answers")
	}
	return ok[0].AnswerText, nil
}
