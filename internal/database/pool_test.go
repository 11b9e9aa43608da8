package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPool(t *testing.T, cfg PoolConfig) (*PoolManager, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	pm, err := NewPoolManager(db, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { pm.Close() })

	return pm, mock
}

func testPoolConfig() PoolConfig {
	cfg := DefaultPoolConfig()
	cfg.HealthCheckInterval = 0
	return cfg
}

// =============================================================================
// 🧪 配置校验
// =============================================================================

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PoolConfig
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  DefaultPoolConfig(),
			wantErr: false,
		},
		{
			name: "zero max open conns",
			config: PoolConfig{
				MaxIdleConns: 5,
				MaxOpenConns: 0,
			},
			wantErr: true,
		},
		{
			name: "zero max idle conns",
			config: PoolConfig{
				MaxIdleConns: 0,
				MaxOpenConns: 10,
			},
			wantErr: true,
		},
		{
			name: "idle exceeds open",
			config: PoolConfig{
				MaxIdleConns: 10,
				MaxOpenConns: 5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPoolManager_RejectsInvalidConfig(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	cfg := testPoolConfig()
	cfg.MaxOpenConns = 0
	_, err = NewPoolManager(db, cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pool config")
}

func TestNewPoolManager_NilDB(t *testing.T) {
	_, err := NewPoolManager(nil, testPoolConfig(), zap.NewNop())
	require.Error(t, err)
}

// =============================================================================
// 🧪 生命周期
// =============================================================================

func TestPoolManager_Ping(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())

	mock.ExpectPing()
	assert.NoError(t, pm.Ping(context.Background()))
}

func TestPoolManager_PingAfterClose(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())
	mock.ExpectClose()

	require.NoError(t, pm.Close())
	err := pm.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestPoolManager_CloseIdempotent(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())
	mock.ExpectClose()

	require.NoError(t, pm.Close())
	require.NoError(t, pm.Close())
}

// =============================================================================
// 🧪 统计上报
// =============================================================================

func TestPoolManager_Stats(t *testing.T) {
	cfg := testPoolConfig()
	cfg.MaxOpenConns = 25
	cfg.MaxIdleConns = 5
	pm, _ := newMockPool(t, cfg)

	stats := pm.Stats()
	assert.Equal(t, 25, stats.MaxOpenConnections)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestPoolManager_OnStats(t *testing.T) {
	cfg := testPoolConfig()
	cfg.MaxOpenConns = 12
	cfg.MaxIdleConns = 3
	pm, _ := newMockPool(t, cfg)

	var got []PoolStats
	pm.OnStats(func(st PoolStats) { got = append(got, st) })

	pm.reportStats()
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].MaxOpenConnections)

	// 未注册回调时上报是无操作
	pm.OnStats(nil)
	pm.reportStats()
	assert.Len(t, got, 1)
}

// =============================================================================
// 🧪 事务
// =============================================================================

func TestPoolManager_WithTransaction_Commit(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := pm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolManager_WithTransaction_Rollback(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := fmt.Errorf("business rule violated")
	err := pm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolManager_WithTransaction_Closed(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())
	mock.ExpectClose()
	require.NoError(t, pm.Close())

	err := pm.WithTransaction(context.Background(), func(tx *gorm.DB) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestPoolManager_WithTransactionRetry_NonRetryableStops(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())

	mock.ExpectBegin()
	mock.ExpectRollback()

	attempts := 0
	err := pm.WithTransactionRetry(context.Background(), 3, func(tx *gorm.DB) error {
		attempts++
		return fmt.Errorf("constraint violation")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "non-retryable errors must not be retried")
}

func TestPoolManager_WithTransactionRetry_RetriesTransientErrors(t *testing.T) {
	pm, mock := newMockPool(t, testPoolConfig())

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := pm.WithTransactionRetry(context.Background(), 3, func(tx *gorm.DB) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("deadlock detected")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("deadlock detected"), true},
		{fmt.Errorf("ERROR: could not serialize access (SQLSTATE 40001)"), true},
		{fmt.Errorf("read tcp: connection reset by peer"), true},
		{fmt.Errorf("driver: bad connection"), true},
		{fmt.Errorf("lock wait timeout exceeded"), true},
		{fmt.Errorf("duplicate key value violates unique constraint"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableError(tt.err), "error: %v", tt.err)
	}
}
