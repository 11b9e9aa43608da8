package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/rfpflow/types"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	s := NewGormStore(db, zap.NewNop())
	require.NoError(t, s.InitDatabase())
	return s
}

func seedRequirement(t *testing.T, s *GormStore, id int64) {
	t.Helper()
	err := s.db.Create(&RequirementResponse{
		ID:          id,
		Category:    "Reporting",
		Requirement: "Describe your audit trail capabilities.",
		RFPName:     "RFP-2026-03",
		UploadedBy:  "analyst",
	}).Error
	require.NoError(t, err)
}

func TestGormStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	seedRequirement(t, s, 7)

	outcome := &types.GenerationOutcome{
		RequirementID:   7,
		FinalAnswerText: "Synthesized final answer.",
		ContributingProviderResults: []types.ProviderResult{
			{ProviderID: types.ProviderOpenAI, AnswerText: "openai answer", Status: types.ResultOK},
			{ProviderID: types.ProviderDeepSeek, Status: types.ResultFailed, ErrorKind: types.ErrProviderTimeout},
			{ProviderID: types.ProviderAnthropic, AnswerText: "anthropic answer", Status: types.ResultOK},
		},
		SynthesisUsed: true,
		Status:        types.ItemSucceeded,
	}
	matches := []types.SimilarityMatch{
		{SourceRequirementID: 3, Score: 0.95, MatchedResponseText: "prior answer"},
	}

	require.NoError(t, s.SaveOutcome(context.Background(), outcome, matches))

	row, err := s.LoadResponse(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Synthesized final answer.", row.FinalResponse)
	assert.Equal(t, "openai answer", row.OpenAIResponse)
	assert.Empty(t, row.DeepSeekResponse, "failed provider leaves its column untouched")
	assert.Equal(t, "anthropic answer", row.AnthropicResponse)
	assert.Equal(t, "moa", row.ModelProvider)
	assert.False(t, row.Timestamp.IsZero())

	var saved []types.SimilarityMatch
	require.NoError(t, json.Unmarshal([]byte(row.SimilarQuestions), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, int64(3), saved[0].SourceRequirementID)

	item, err := s.LoadRequirement(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Describe your audit trail capabilities.", item.RequirementText)
	assert.Equal(t, "Synthesized final answer.", item.FinalResponse)
}

func TestGormStore_SingleProviderLabel(t *testing.T) {
	s := newTestStore(t)
	seedRequirement(t, s, 1)

	outcome := &types.GenerationOutcome{
		RequirementID:   1,
		FinalAnswerText: "answer",
		ContributingProviderResults: []types.ProviderResult{
			{ProviderID: types.ProviderDeepSeek, AnswerText: "answer", Status: types.ResultOK},
		},
		Status: types.ItemSucceeded,
	}
	require.NoError(t, s.SaveOutcome(context.Background(), outcome, nil))

	row, err := s.LoadResponse(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "deepseek", row.ModelProvider)
	assert.Equal(t, "[]", row.SimilarQuestions, "nil matches persist as an empty array")
}

func TestGormStore_SaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	seedRequirement(t, s, 2)

	first := &types.GenerationOutcome{
		RequirementID:   2,
		FinalAnswerText: "first",
		ContributingProviderResults: []types.ProviderResult{
			{ProviderID: types.ProviderOpenAI, AnswerText: "first", Status: types.ResultOK},
		},
		Status: types.ItemSucceeded,
	}
	require.NoError(t, s.SaveOutcome(context.Background(), first, nil))

	second := *first
	second.FinalAnswerText = "second"
	second.ContributingProviderResults[0].AnswerText = "second"
	require.NoError(t, s.SaveOutcome(context.Background(), &second, nil))

	row, err := s.LoadResponse(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "second", row.FinalResponse)
	assert.Equal(t, "second", row.OpenAIResponse)
}

func TestGormStore_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadRequirement(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, types.ErrRequirementNotFound, types.GetErrorCode(err))

	err = s.SaveOutcome(context.Background(), &types.GenerationOutcome{RequirementID: 999}, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrRequirementNotFound, types.GetErrorCode(err))
}

func TestGormStore_SaveOutcome_UsesTxRunner(t *testing.T) {
	s := newTestStore(t)
	seedRequirement(t, s, 4)

	runs := 0
	s.WithTxRunner(func(ctx context.Context, fn TxFunc) error {
		runs++
		return s.db.WithContext(ctx).Transaction(fn)
	})

	outcome := &types.GenerationOutcome{
		RequirementID:   4,
		FinalAnswerText: "answer",
		ContributingProviderResults: []types.ProviderResult{
			{ProviderID: types.ProviderOpenAI, AnswerText: "answer", Status: types.ResultOK},
		},
		Status: types.ItemSucceeded,
	}
	require.NoError(t, s.SaveOutcome(context.Background(), outcome, nil))
	assert.Equal(t, 1, runs, "save must go through the injected transaction runner")

	err := s.SaveOutcome(context.Background(), &types.GenerationOutcome{RequirementID: 999}, nil)
	assert.Equal(t, types.ErrRequirementNotFound, types.GetErrorCode(err))
	assert.Equal(t, 2, runs)
}

func TestGormStore_SaveOutcome_TxRunnerFailure(t *testing.T) {
	s := newTestStore(t)
	seedRequirement(t, s, 5)

	s.WithTxRunner(func(ctx context.Context, fn TxFunc) error {
		return fmt.Errorf("connection refused")
	})

	err := s.SaveOutcome(context.Background(), &types.GenerationOutcome{
		RequirementID: 5,
		Status:        types.ItemSucceeded,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrPersistenceFailed, types.GetErrorCode(err))
}

func TestGormStore_NilOutcome(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveOutcome(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidInput, types.GetErrorCode(err))
}
