package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryWithBackoff_SucceedsAfterRetryableFailures(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewTimeoutError("test", "transient")
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), op, fastRetryConfig(5))
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return MapStatusError("test", 401, "bad token")
	}

	err := RetryWithBackoff(context.Background(), op, fastRetryConfig(5))
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		return MapStatusError("test", 503, "down")
	}

	err := RetryWithBackoff(context.Background(), op, fastRetryConfig(2))
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		t.Fatal("operation should not run on a dead context")
		return nil
	}, fastRetryConfig(1))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("plain")))
	assert.True(t, ShouldRetry(NewTimeoutError("p", "t")))
	assert.False(t, ShouldRetry(MapStatusError("p", 400, "bad")))
	assert.True(t, ShouldRetry(MapStatusError("p", 429, "slow down")))
}

func TestExponentialBackoff_Bounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2.0,
	}

	for attempt := 0; attempt < 10; attempt++ {
		got := ExponentialBackoff(attempt, cfg)
		assert.GreaterOrEqual(t, got, time.Duration(0))
		assert.LessOrEqual(t, got, cfg.MaxBackoff)
	}
}

func TestMapStatusError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{401, ErrTypeAuthentication, false},
		{403, ErrTypeAuthentication, false},
		{429, ErrTypeRateLimit, true},
		{500, ErrTypeServiceUnavailable, true},
		{503, ErrTypeServiceUnavailable, true},
		{400, ErrTypeInvalidRequest, false},
		{418, ErrTypeInvalidRequest, false},
	}

	for _, tt := range tests {
		e := MapStatusError("p", tt.status, "body")
		assert.Equal(t, tt.wantType, e.Type, "status %d", tt.status)
		assert.Equal(t, tt.retryable, e.Retryable, "status %d", tt.status)
	}
}
