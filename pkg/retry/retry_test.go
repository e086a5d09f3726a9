package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvidela/shop-assistant/pkg/retry"
)

func TestDoWithResult(t *testing.T) {

	cfg := func(attempts int) retry.RetryConfig {
		return retry.RetryConfig{
			MaxAttempts: attempts,
			Backoff:     retry.LinearBackoff(time.Millisecond),
		}
	}

	t.Run("FirstAttemptSucceeds", func(t *testing.T) {
		calls := 0
		v, err := retry.DoWithResult(t.Context(), cfg(3), func() (int, error) {
			calls++
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("RecoversAfterFailures", func(t *testing.T) {
		calls := 0
		v, err := retry.DoWithResult(t.Context(), cfg(3), func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 3, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		_, err := retry.DoWithResult(t.Context(), cfg(3), func() (int, error) {
			calls++
			return 0, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("ShouldRetryStopsEarly", func(t *testing.T) {
		fatal := errors.New("fatal")
		c := cfg(5)
		c.ShouldRetry = func(err error) bool { return !errors.Is(err, fatal) }

		calls := 0
		_, err := retry.DoWithResult(t.Context(), c, func() (int, error) {
			calls++
			return 0, fatal
		})
		require.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := retry.DoWithResult(ctx, cfg(3), func() (int, error) {
			t.Fatal("fn must not run")
			return 0, nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CancelBetweenAttempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		boom := errors.New("boom")

		c := retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.LinearBackoff(time.Minute),
		}
		_, err := retry.DoWithResult(ctx, c, func() (int, error) {
			cancel()
			return 0, boom
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, boom)
	})
}
