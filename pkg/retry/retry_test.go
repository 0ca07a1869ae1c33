package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titanshop/storefront/pkg/retry"
)

var errBoom = errors.New("boom")

func fastConfig(maxAttempts int) retry.Config {
	return retry.Config{
		MaxAttempts: maxAttempts,
		Backoff:     retry.ConstantBackoff(time.Millisecond),
	}
}

func TestDo(t *testing.T) {
	t.Run("SucceedsFirstTry", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), fastConfig(3), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), fastConfig(3), func() error {
			calls++
			if calls < 3 {
				return errBoom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("AttemptsExhausted", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), fastConfig(3), func() error {
			calls++
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 3, calls)
	})

	t.Run("NonRetryableStopsImmediately", func(t *testing.T) {
		cfg := fastConfig(3)
		cfg.ShouldRetry = func(err error) bool {
			return !errors.Is(err, errBoom)
		}

		var calls int
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, calls)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		var calls int
		err := retry.Do(ctx, fastConfig(3), func() error {
			calls++
			return errBoom
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	t.Run("ReturnsValue", func(t *testing.T) {
		got, err := retry.DoWithResult(
			t.Context(), fastConfig(3), func() (int, error) {
				return 42, nil
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("ZeroValueOnFailure", func(t *testing.T) {
		got, err := retry.DoWithResult(
			t.Context(), fastConfig(2), func() (int, error) {
				return 7, errBoom
			},
		)
		assert.ErrorIs(t, err, errBoom)
		assert.Zero(t, got)
	})
}
