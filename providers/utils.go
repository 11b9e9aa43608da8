package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BaSui01/rfpflow/types"
)

// MapHTTPError 将上游 HTTP 状态码归一化为统一错误码。
// 各适配器共用，消除逐 Provider 复制的错误分支。
func MapHTTPError(status int, msg string, provider string) *types.Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.NewError(types.ErrProviderAuthFailed, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case status == http.StatusRequestEntityTooLarge:
		return types.NewError(types.ErrContextTooLarge, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case status == http.StatusBadRequest && LooksLikeContextOverflow(msg):
		// 上游用 400 + 文案表达截断失败，归一化为 CONTEXT_TOO_LARGE
		return types.NewError(types.ErrContextTooLarge, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case status == http.StatusTooManyRequests:
		return types.NewError(types.ErrProviderUnavailable, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	case status >= 500:
		return types.NewError(types.ErrProviderUnavailable, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	default:
		return types.NewError(types.ErrProviderUnavailable, msg).
			WithHTTPStatus(status).WithProvider(provider)
	}
}

// LooksLikeContextOverflow 判断错误文案是否为上下文超长。
func LooksLikeContextOverflow(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{
		"context_length_exceeded",
		"maximum context length",
		"context length",
		"prompt is too long",
		"too many tokens",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MapTransportError 将网络/超时错误归一化为统一错误码。
func MapTransportError(err error, provider string) *types.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrProviderTimeout, "provider call timed out").
			WithCause(err).WithProvider(provider)
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return types.NewError(types.ErrProviderTimeout, "provider call timed out").
			WithCause(err).WithProvider(provider)
	}
	return types.NewError(types.ErrProviderUnavailable, err.Error()).
		WithCause(err).WithRetryable(true).WithProvider(provider)
}
