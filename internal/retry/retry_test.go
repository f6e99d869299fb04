package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/retry"
)

func TestExecute_SucceedsAfterTransientErrors(t *testing.T) {
	p := retry.NewPolicy(3, time.Millisecond)
	calls := 0

	err := p.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_GivesUp(t *testing.T) {
	p := retry.NewPolicy(2, time.Millisecond)
	boom := errors.New("boom")

	err := p.Execute(context.Background(), func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
}

func TestExecute_PermanentStopsImmediately(t *testing.T) {
	p := retry.NewPolicy(5, time.Millisecond)
	calls := 0
	bad := errors.New("status 401")

	err := p.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return retry.Permanent(bad)
	})

	assert.Equal(t, bad, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_ContextCanceled(t *testing.T) {
	p := retry.NewPolicy(5, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Execute(ctx, func(ctx context.Context) error { return errors.New("down") })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPolicy_ClampsAttempts(t *testing.T) {
	calls := 0
	err := retry.NewPolicy(0, time.Millisecond).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("x")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
