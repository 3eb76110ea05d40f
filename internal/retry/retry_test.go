package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastConfig(attempts int) Config {
	return Config{Attempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestConfig_Backoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		attempt  int
		expected time.Duration
	}{
		{"defaults first attempt", Config{}, 0, 100 * time.Millisecond},
		{"defaults doubles", Config{}, 2, 400 * time.Millisecond},
		{"capped", Config{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second}, 5, 3 * time.Second},
		{"negative attempt", Config{InitialBackoff: 10 * time.Millisecond}, -1, 10 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.cfg.Backoff(tt.attempt))
		})
	}
}

func TestConfig_Jitter(t *testing.T) {
	t.Parallel()

	cfg := Config{InitialBackoff: 100 * time.Millisecond, Jitter: 0.5}
	for range 50 {
		wait := cfg.jittered(0)
		assert.GreaterOrEqual(t, wait, 100*time.Millisecond)
		assert.LessOrEqual(t, wait, 150*time.Millisecond)
	}

	assert.Equal(t, 100*time.Millisecond, Config{InitialBackoff: 100 * time.Millisecond}.jittered(0))
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []int
	err := Do(context.Background(), fastConfig(5), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, WithOnRetry(func(attempt int, err error, _ time.Duration) {
		assert.ErrorIs(t, err, errTransient)
		retried = append(retried, attempt)
	}))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDo_SingleAttemptByDefault(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), Config{}, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestDo_Permanent(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(5), func(context.Context) error {
		calls++
		return Permanent(errTransient)
	})

	assert.Equal(t, errTransient, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), func(context.Context) error {
		t.Fatal("fn must not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithCancel(context.Background())
	calls := 0
	err = Do(ctx, Config{Attempts: 3, InitialBackoff: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}
