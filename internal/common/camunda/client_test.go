package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Plaintext:      true,
		RequestTimeout: 2500,
	})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 2500*time.Millisecond, cfg.ConnectionTimeout)
	assert.Equal(t, DefaultRetryConfig, cfg.RetryConfig)

	assert.Equal(t, 10*time.Second, ConfigFromApp(config.CamundaConfig{}).ConnectionTimeout)
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 5 * time.Second},
		{62, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, backoff(rc, tt.attempt))
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("rpc error: code = Unavailable desc = connection error"), true},
		{fmt.Errorf("dial tcp 127.0.0.1:26500: connect: connection refused"), true},
		{fmt.Errorf("context deadline exceeded"), true},
		{fmt.Errorf("rpc error: code = PermissionDenied"), false},
		{fmt.Errorf("context canceled"), false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(tt.err))
		})
	}
}

func TestConnect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, &ClientConfig{
		GatewayAddress:         "127.0.0.1:1",
		UsePlaintextConnection: true,
		ConnectionTimeout:      100 * time.Millisecond,
		RetryConfig:            &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, logger.NewTestLogger(t))
	require.Error(t, err)
}
