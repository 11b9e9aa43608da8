package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/rfpflow/types"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		msg       string
		wantCode  types.ErrorCode
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, "bad key", types.ErrProviderAuthFailed, false},
		{"forbidden", http.StatusForbidden, "no access", types.ErrProviderAuthFailed, false},
		{"payload too large", http.StatusRequestEntityTooLarge, "too big", types.ErrContextTooLarge, false},
		{"context overflow via 400", http.StatusBadRequest, "maximum context length is 8192 tokens", types.ErrContextTooLarge, false},
		{"plain 400", http.StatusBadRequest, "missing field", types.ErrProviderUnavailable, false},
		{"rate limited", http.StatusTooManyRequests, "slow down", types.ErrProviderUnavailable, true},
		{"bad gateway", http.StatusBadGateway, "upstream", types.ErrProviderUnavailable, true},
		{"internal", http.StatusInternalServerError, "boom", types.ErrProviderUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.status, tt.msg, "openai")
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, "openai", err.Provider)
			assert.Equal(t, tt.status, err.HTTPStatus)
		})
	}
}

func TestMapTransportError(t *testing.T) {
	err := MapTransportError(context.DeadlineExceeded, "deepseek")
	assert.Equal(t, types.ErrProviderTimeout, err.Code)

	err = MapTransportError(errors.New("connection refused"), "deepseek")
	assert.Equal(t, types.ErrProviderUnavailable, err.Code)
	assert.True(t, err.Retryable)
}

func TestLooksLikeContextOverflow(t *testing.T) {
	assert.True(t, LooksLikeContextOverflow("This model's maximum context length is 8192 tokens"))
	assert.True(t, LooksLikeContextOverflow("prompt is too long: 210000 tokens > 200000"))
	assert.False(t, LooksLikeContextOverflow("invalid api key"))
}
