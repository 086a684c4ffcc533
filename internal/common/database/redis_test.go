package database

import (
	"context"
	"testing"
	"time"

	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), config.RedisConfig{Address: mr.Addr()}, 1, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.GetClient().Set(context.Background(), "inspection:probe", "ok", 0).Err())
	got, err := mr.Get("inspection:probe")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), config.RedisConfig{Address: addr, DialTimeout: 200}, 1, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestConnectRedis_Cancelled(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectRedis(ctx, config.RedisConfig{Address: addr}, 5, logger.NewTestLogger(t))
	assert.Error(t, err)
}

func TestNewRedis_MissingAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.RedisConfig
		wantPool     int
		wantIdle     int
		wantDial     time.Duration
		wantIOTimeout time.Duration
	}{
		{
			name:         "defaults",
			cfg:          config.RedisConfig{Address: "localhost:6379"},
			wantPool:     10,
			wantIdle:     2,
			wantDial:     5 * time.Second,
			wantIOTimeout: 3 * time.Second,
		},
		{
			name:         "configured",
			cfg:          config.RedisConfig{Address: "redis:6379", PoolSize: 25, DialTimeout: 1000, IOTimeout: 500},
			wantPool:     25,
			wantIdle:     5,
			wantDial:     time.Second,
			wantIOTimeout: 500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options(tt.cfg)
			assert.Equal(t, tt.cfg.Address, opts.Addr)
			assert.Equal(t, tt.wantPool, opts.PoolSize)
			assert.Equal(t, tt.wantIdle, opts.MinIdleConns)
			assert.Equal(t, tt.wantDial, opts.DialTimeout)
			assert.Equal(t, tt.wantIOTimeout, opts.ReadTimeout)
			assert.Equal(t, tt.wantIOTimeout, opts.WriteTimeout)
		})
	}
}
