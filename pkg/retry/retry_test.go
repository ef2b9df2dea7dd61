package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/niksmo/storefront/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDoWithResult(t *testing.T) {
	cfg := retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.LinearBackoff(time.Millisecond),
	}

	t.Run("SucceedsAfterRetry", func(t *testing.T) {
		var calls int
		v, err := retry.DoWithResult(t.Context(), cfg, func() (int, error) {
			calls++
			if calls < 2 {
				return 0, errTransient
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 2, calls)
	})

	t.Run("GivesUp", func(t *testing.T) {
		var calls int
		_, err := retry.DoWithResult(t.Context(), cfg, func() (int, error) {
			calls++
			return 0, errTransient
		})
		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		c := cfg
		c.ShouldRetry = func(error) bool { return false }

		var calls int
		_, err := retry.DoWithResult(t.Context(), c, func() (int, error) {
			calls++
			return 1, errTransient
		})
		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := retry.Do(ctx, cfg, func() error {
			t.Fatal("must not be called")
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCappedBackoff(t *testing.T) {
	b := retry.CappedBackoff(retry.ExponentialBackoff(time.Second), 3*time.Second)
	assert.LessOrEqual(t, b(1), 3*time.Second)
	assert.Equal(t, 3*time.Second, b(5))
}

func TestUnlessContextErr(t *testing.T) {
	assert.True(t, retry.UnlessContextErr(errTransient))
	assert.False(t, retry.UnlessContextErr(context.Canceled))
	assert.False(t, retry.UnlessContextErr(
		fmt.Errorf("ping: %w", context.DeadlineExceeded),
	))
}
