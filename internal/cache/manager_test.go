package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Manager 测试
// =============================================================================

func setupTestRedis(t *testing.T) *Manager {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.HealthCheckInterval = 0 // 测试中不启动后台检查

	m, err := NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m
}

func TestManager_SetGet(t *testing.T) {
	m := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k1", "v1", time.Minute))

	val, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)
}

func TestManager_GetMiss(t *testing.T) {
	m := setupTestRedis(t)

	_, err := m.Get(context.Background(), "missing")
	assert.True(t, IsCacheMiss(err))
}

func TestManager_JSON(t *testing.T) {
	m := setupTestRedis(t)
	ctx := context.Background()

	type payload struct {
		ID    int64   `json:"id"`
		Score float64 `json:"score"`
	}

	in := payload{ID: 42, Score: 0.93}
	require.NoError(t, m.SetJSON(ctx, "retrieval:42", in, 0))

	var out payload
	require.NoError(t, m.GetJSON(ctx, "retrieval:42", &out))
	assert.Equal(t, in, out)
}

func TestManager_Delete(t *testing.T) {
	m := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k1", "v1", 0))
	require.NoError(t, m.Delete(ctx, "k1"))

	_, err := m.Get(ctx, "k1")
	assert.True(t, IsCacheMiss(err))
}

func TestManager_ClosedRejectsOperations(t *testing.T) {
	m := setupTestRedis(t)
	require.NoError(t, m.Close())

	_, err := m.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, IsCacheMiss(err))

	assert.Error(t, m.Set(context.Background(), "k", "v", 0))
	assert.NoError(t, m.Close(), "double close is a no-op")
}
