package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/rfpflow/types"
)

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	s := NewMemoryStore()
	s.AddRequirement(types.RequirementItem{ID: 1, RequirementText: "Describe X."})

	outcome := &types.GenerationOutcome{
		RequirementID:   1,
		FinalAnswerText: "answer",
		Status:          types.ItemSucceeded,
	}
	matches := []types.SimilarityMatch{{SourceRequirementID: 9, Score: 0.92}}
	require.NoError(t, s.SaveOutcome(context.Background(), outcome, matches))

	item, err := s.LoadRequirement(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "answer", item.FinalResponse)

	saved, ok := s.Outcome(1)
	require.True(t, ok)
	assert.Equal(t, types.ItemSucceeded, saved.Status)
	assert.Len(t, s.Matches(1), 1)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.LoadRequirement(context.Background(), 5)
	assert.Equal(t, types.ErrRequirementNotFound, types.GetErrorCode(err))

	err = s.SaveOutcome(context.Background(), &types.GenerationOutcome{RequirementID: 5}, nil)
	assert.Equal(t, types.ErrRequirementNotFound, types.GetErrorCode(err))
}
