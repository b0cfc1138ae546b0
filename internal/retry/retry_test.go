package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithExponentialBackoff_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithExponentialBackoff_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithInitialDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithExponentialBackoff_FatalErrorNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return Fatal(errors.New("bad request"))
	}, WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "not retrying")
}

func TestWithExponentialBackoff_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return errors.New("still failing")
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond), WithMultiplier(1.0))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 retries")
}

func TestWithExponentialBackoff_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithExponentialBackoff(ctx, func() error {
		return errors.New("transient")
	}, WithInitialDelay(time.Minute))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoll_DoneImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Poll(context.Background(), 5, time.Millisecond, func() (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPoll_EventuallyDone(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Poll(context.Background(), 5, time.Millisecond, func() (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPoll_Exhausted(t *testing.T) {
	t.Parallel()

	err := Poll(context.Background(), 3, time.Millisecond, func() (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
}

func TestPoll_CheckErrorAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := Poll(context.Background(), 3, time.Millisecond, func() (bool, error) {
		calls++
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
