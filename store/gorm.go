package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/rfpflow/types"
)

// TxFunc 事务回调。与连接池管理器的 TransactionFunc 同构，
// 便于把带重试的事务执行器直接注入存储层。
type TxFunc = func(tx *gorm.DB) error

// GormStore 基于 GORM 的生产存储实现。
// 写操作通过 inTx 在事务中执行，默认为 GORM 原生事务。
type GormStore struct {
	db     *gorm.DB
	inTx   func(ctx context.Context, fn TxFunc) error
	logger *zap.Logger
}

// NewGormStore 创建 GORM 存储。
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GormStore{db: db, logger: logger}
	s.inTx = func(ctx context.Context, fn TxFunc) error {
		return db.WithContext(ctx).Transaction(fn)
	}
	return s
}

// WithTxRunner 替换事务执行器，例如连接池管理器的重试事务。
// 返回自身便于链式调用。
func (s *GormStore) WithTxRunner(run func(ctx context.Context, fn TxFunc) error) *GormStore {
	if run != nil {
		s.inTx = run
	}
	return s
}

// InitDatabase 迁移表结构。
func (s *GormStore) InitDatabase() error {
	if err := s.db.AutoMigrate(&RequirementResponse{}); err != nil {
		return types.NewError(types.ErrPersistenceFailed, "database migration failed").WithCause(err)
	}
	return nil
}

// SaveOutcome 将生成结果写回需求所在行。
// 每个 Provider 的候选回答、最终回答与相似问答引用一并更新。
func (s *GormStore) SaveOutcome(ctx context.Context, outcome *types.GenerationOutcome, matches []types.SimilarityMatch) error {
	if outcome == nil {
		return types.NewError(types.ErrInvalidInput, "outcome cannot be nil")
	}

	updates := map[string]interface{}{
		"final_response": outcome.FinalAnswerText,
		"model_provider": providerLabel(outcome),
		"timestamp":      time.Now(),
	}
	for _, r := range outcome.ContributingProviderResults {
		if r.Status != types.ResultOK {
			continue
		}
		switch r.ProviderID {
		case types.ProviderOpenAI:
			updates["openai_response"] = r.AnswerText
		case types.ProviderDeepSeek:
			updates["deepseek_response"] = r.AnswerText
		case types.ProviderAnthropic:
			updates["anthropic_response"] = r.AnswerText
		}
	}

	if matches == nil {
		matches = []types.SimilarityMatch{}
	}
	similar, err := json.Marshal(matches)
	if err != nil {
		return types.NewError(types.ErrPersistenceFailed, "failed to encode similarity matches").WithCause(err)
	}
	updates["similar_questions"] = string(similar)

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&RequirementResponse{}).
			Where("id = ?", outcome.RequirementID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewError(types.ErrRequirementNotFound, "requirement does not exist")
	}
	if err != nil {
		s.logger.Error("save outcome failed",
			zap.Int64("requirement_id", outcome.RequirementID),
			zap.Error(err),
		)
		return types.NewError(types.ErrPersistenceFailed, "failed to save generation outcome").
			WithCause(err).WithRetryable(true)
	}

	s.logger.Debug("outcome saved",
		zap.Int64("requirement_id", outcome.RequirementID),
		zap.String("model_provider", providerLabel(outcome)),
		zap.Bool("synthesis_used", outcome.SynthesisUsed),
	)
	return nil
}

// LoadRequirement 按 ID 加载需求条目。
func (s *GormStore) LoadRequirement(ctx context.Context, id int64) (*types.RequirementItem, error) {
	var row RequirementResponse
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrRequirementNotFound, "requirement does not exist")
	}
	if err != nil {
		s.logger.Error("load requirement failed", zap.Int64("requirement_id", id), zap.Error(err))
		return nil, types.NewError(types.ErrPersistenceFailed, "failed to load requirement").
			WithCause(err).WithRetryable(true)
	}

	return &types.RequirementItem{
		ID:              row.ID,
		Category:        row.Category,
		RequirementText: row.Requirement,
		RFPName:         row.RFPName,
		UploadedBy:      row.UploadedBy,
		FinalResponse:   row.FinalResponse,
	}, nil
}

// LoadResponse 按 ID 加载完整的响应行，含各 Provider 候选与引用。
func (s *GormStore) LoadResponse(ctx context.Context, id int64) (*RequirementResponse, error) {
	var row RequirementResponse
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrRequirementNotFound, "requirement does not exist")
	}
	if err != nil {
		return nil, types.NewError(types.ErrPersistenceFailed, "failed to load response").
			WithCause(err).WithRetryable(true)
	}
	return &row, nil
}
