package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/types"
)

type stubProvider struct{ name string }

func (s *stubProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Provider: s.name, Content: "ok"}, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return &HealthStatus{Healthy: true}, nil
}

func (s *stubProvider) Name() string { return s.name }

func TestRegistry_SelectSingle(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(types.ProviderOpenAI, &stubProvider{name: "openai"})

	sel, err := r.Select(types.SelectionOpenAI)
	require.Nil(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, types.ProviderOpenAI, sel[0].ID)
}

func TestRegistry_SelectMoAPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(types.ProviderOpenAI, &stubProvider{name: "openai"})
	r.Register(types.ProviderAnthropic, &stubProvider{name: "anthropic"})
	r.Register(types.ProviderDeepSeek, &stubProvider{name: "deepseek"})

	sel, err := r.Select(types.SelectionMoA)
	require.Nil(t, err)
	require.Len(t, sel, 3)
	assert.Equal(t, types.ProviderOpenAI, sel[0].ID)
	assert.Equal(t, types.ProviderAnthropic, sel[1].ID)
	assert.Equal(t, types.ProviderDeepSeek, sel[2].ID)
}

func TestRegistry_SelectErrors(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	_, err := r.Select(types.ProviderSelection("gemini"))
	require.NotNil(t, err)
	assert.Equal(t, types.ErrInvalidInput, err.Code)

	_, err = r.Select(types.SelectionMoA)
	require.NotNil(t, err)
	assert.Equal(t, types.ErrInvalidInput, err.Code)

	_, err = r.Select(types.SelectionAnthropic)
	require.NotNil(t, err)
	assert.Equal(t, types.ErrInvalidInput, err.Code)
}

func TestRegistry_ReRegisterKeepsOrder(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(types.ProviderOpenAI, &stubProvider{name: "openai"})
	r.Register(types.ProviderDeepSeek, &stubProvider{name: "deepseek"})
	r.Register(types.ProviderOpenAI, &stubProvider{name: "openai-v2"})

	ids := r.IDs()
	require.Equal(t, []types.ProviderID{types.ProviderOpenAI, types.ProviderDeepSeek}, ids)
	assert.Equal(t, "openai-v2", r.Get(types.ProviderOpenAI).Name())
}
