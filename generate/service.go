package generate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/internal/metrics"
	"github.com/BaSui01/rfpflow/llm"
	"github.com/BaSui01/rfpflow/prompt"
	"github.com/BaSui01/rfpflow/retrieval"
	"github.com/BaSui01/rfpflow/store"
	"github.com/BaSui01/rfpflow/synthesis"
	"github.com/BaSui01/rfpflow/types"
)

// 流水线阶段标签，进度上报用。
const (
	StageRetrieving   = "retrieving context"
	StageSynthesizing = "synthesizing"
	StageSaving       = "saving"
)

// StageCallingProvider 返回 Provider 调用阶段的标签。
func StageCallingProvider(id types.ProviderID) string {
	return fmt.Sprintf("calling provider %s", id)
}

// StageFunc 阶段进度回调，nil 表示不上报。
type StageFunc func(stage string)

// Options Service 构造参数。
type Options struct {
	Store     store.ResultStore
	Retriever retrieval.Retriever
	Registry  *llm.Registry
	Engine    synthesis.Engine
	Builder   *prompt.Builder

	// 检索参数，零值时取包默认
	TopK     int
	MinScore float64

	// 单个 Provider 调用超时，零值时取 30s
	ProviderTimeout time.Duration

	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// Service 单条需求生成服务。
type Service struct {
	store     store.ResultStore
	retriever retrieval.Retriever
	registry  *llm.Registry
	engine    synthesis.Engine
	builder   *prompt.Builder

	topK            int
	minScore        float64
	providerTimeout time.Duration

	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewService 创建生成服务。
func NewService(opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	if opts.MinScore <= 0 {
		opts.MinScore = retrieval.DefaultMinScore
	}
	if opts.ProviderTimeout == 0 {
		opts.ProviderTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		store:           opts.Store,
		retriever:       opts.Retriever,
		registry:        opts.Registry,
		engine:          opts.Engine,
		builder:         opts.Builder,
		topK:            opts.TopK,
		minScore:        opts.MinScore,
		providerTimeout: opts.ProviderTimeout,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
	}
}

// Generate 执行单条需求的完整生成流水线。
// 返回的 outcome 在条目失败时也非 nil，携带失败状态与错误类别；
// error 与 outcome.ErrorKind 一致。
func (s *Service) Generate(ctx context.Context, requirementID int64, selection types.ProviderSelection, onStage StageFunc) (*types.GenerationOutcome, []types.SimilarityMatch, error) {
	selected, serr := s.registry.Select(selection)
	if serr != nil {
		return nil, nil, serr
	}

	item, err := s.store.LoadRequirement(ctx, requirementID)
	if err != nil {
		return nil, nil, err
	}

	matches := s.retrieve(ctx, *item, onStage)

	msgs, err := s.builder.BuildGeneration(*item, matches)
	if err != nil {
		// Token 预算超限：条目失败，不触碰已有的存量回答
		outcome := &types.GenerationOutcome{
			RequirementID: requirementID,
			Status:        types.ItemFailed,
			ErrorKind:     types.GetErrorCode(err),
		}
		return outcome, matches, err
	}

	results := s.invokeProviders(ctx, selected, msgs, onStage)

	outcome := &types.GenerationOutcome{
		RequirementID:               requirementID,
		ContributingProviderResults: results,
	}

	successCount := 0
	for _, r := range results {
		if r.Status == types.ResultOK {
			successCount++
		}
	}
	outcome.SynthesisUsed = successCount >= 2

	if successCount >= 2 && onStage != nil {
		onStage(StageSynthesizing)
	}
	final, err := s.engine.Synthesize(ctx, item.RequirementText, results)
	if err != nil {
		outcome.Status = types.ItemFailed
		if len(results) == 1 {
			outcome.ErrorKind = results[0].ErrorKind
		} else {
			outcome.ErrorKind = types.GetErrorCode(err)
		}
		s.logger.Warn("generation failed, no usable answer",
			zap.Int64("requirement_id", requirementID),
			zap.String("selection", string(selection)),
			zap.String("error_kind", string(outcome.ErrorKind)),
		)
		return outcome, matches, types.NewError(outcome.ErrorKind, "no provider produced a usable answer")
	}

	outcome.FinalAnswerText = final
	outcome.Status = types.ItemSucceeded

	if err := s.save(ctx, outcome, matches, onStage); err != nil {
		outcome.Status = types.ItemFailed
		outcome.ErrorKind = types.GetErrorCode(err)
		outcome.FinalAnswerText = ""
		return outcome, matches, err
	}

	s.logger.Info("generation completed",
		zap.Int64("requirement_id", requirementID),
		zap.String("selection", string(selection)),
		zap.Int("providers_succeeded", successCount),
		zap.Bool("synthesis_used", outcome.SynthesisUsed),
	)
	return outcome, matches, nil
}

// retrieve 检索相似问答，失败时降级为空匹配集。
func (s *Service) retrieve(ctx context.Context, item types.RequirementItem, onStage StageFunc) []types.SimilarityMatch {
	if onStage != nil {
		onStage(StageRetrieving)
	}

	matches, err := s.retriever.Find(ctx, item, s.topK, s.minScore)
	if err != nil {
		s.logger.Warn("retrieval failed, continuing without context",
			zap.Int64("requirement_id", item.ID),
			zap.String("error_kind", string(types.ErrRetrievalUnavailable)),
			zap.Error(err),
		)
		return nil
	}
	return matches
}

// invokeProviders 按顺序调用选定的 Provider，失败互相隔离。
func (s *Service) invokeProviders(ctx context.Context, selected []llm.Selected, msgs []llm.Message, onStage StageFunc) []types.ProviderResult {
	results := make([]types.ProviderResult, 0, len(selected))
	for _, sel := range selected {
		if onStage != nil {
			onStage(StageCallingProvider(sel.ID))
		}

		start := time.Now()
		resp, err := sel.Provider.Completion(ctx, &llm.ChatRequest{
			Messages: msgs,
			Timeout:  s.providerTimeout,
		})
		latency := time.Since(start)

		result := types.ProviderResult{
			ProviderID: sel.ID,
			LatencyMs:  latency.Milliseconds(),
		}
		if err != nil {
			result.Status = types.ResultFailed
			result.ErrorKind = types.GetErrorCode(err)
			s.logger.Warn("provider call failed",
				zap.String("provider", string(sel.ID)),
				zap.String("error_kind", string(result.ErrorKind)),
				zap.Duration("latency", latency),
			)
			if s.metrics != nil {
				s.metrics.RecordProviderRequest(string(sel.ID), "error", latency, 0, 0)
			}
		} else {
			result.Status = types.ResultOK
			result.AnswerText = resp.Content
			if s.metrics != nil {
				s.metrics.RecordProviderRequest(string(sel.ID), "success", latency,
					resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			}
		}
		results = append(results, result)
	}
	return results
}

// save 持久化结果，失败时返回 PERSISTENCE_FAILED。
func (s *Service) save(ctx context.Context, outcome *types.GenerationOutcome, matches []types.SimilarityMatch, onStage StageFunc) error {
	if onStage != nil {
		onStage(StageSaving)
	}
	if err := s.store.SaveOutcome(ctx, outcome, matches); err != nil {
		s.logger.Error("failed to persist outcome",
			zap.Int64("requirement_id", outcome.RequirementID),
			zap.Error(err),
		)
		if types.GetErrorCode(err) == types.ErrRequirementNotFound {
			return err
		}
		return types.NewError(types.ErrPersistenceFailed, "failed to persist generation outcome").WithCause(err)
	}
	return nil
}
