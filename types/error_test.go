package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError(ErrProviderTimeout, "call timed out")
	assert.Equal(t, "[PROVIDER_TIMEOUT] call timed out", err.Error())

	cause := errors.New("dial tcp: i/o timeout")
	err = err.WithCause(cause)
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_Builders(t *testing.T) {
	err := NewError(ErrProviderUnavailable, "upstream 502").
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("openai")

	assert.Equal(t, 502, err.HTTPStatus)
	assert.True(t, err.Retryable)
	assert.Equal(t, "openai", err.Provider)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewError(ErrProviderUnavailable, "x").WithRetryable(true)))
	assert.False(t, IsRetryable(NewError(ErrProviderAuthFailed, "x")))
	assert.False(t, IsRetryable(errors.New("plain error")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrEmptyBatch, GetErrorCode(NewError(ErrEmptyBatch, "no items")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}

func TestJobState_Terminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobRunning.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobCancelled.Terminal())
	assert.True(t, JobFailed.Terminal())
}

func TestProviderSelection_Valid(t *testing.T) {
	assert.True(t, SelectionMoA.Valid())
	assert.True(t, SelectionOpenAI.Valid())
	assert.False(t, ProviderSelection("gemini").Valid())
	assert.False(t, ProviderSelection("").Valid())
}
