package cli

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceWatcherEarlyExitOnIncrease(t *testing.T) {
	balances := []int64{500, 500, 1200}
	var idx atomic.Int32
	var notifications atomic.Int32
	var notified int64

	w := &BalanceWatcher{
		Fetch: func(ctx context.Context) (int64, error) {
			i := int(idx.Add(1)) - 1
			if i >= len(balances) {
				i = len(balances) - 1
			}
			return balances[i], nil
		},
		Interval: 5 * time.Millisecond,
		MaxWait:  time.Second,
		Notify: func(b int64) {
			notifications.Add(1)
			notified = b
		},
	}

	increased, err := w.Wait(context.Background(), 500)
	require.NoError(t, err)
	assert.True(t, increased)
	assert.Equal(t, int32(1), notifications.Load())
	assert.Equal(t, int64(1200), notified)
	assert.Equal(t, int32(3), idx.Load(), "polling must stop at the first increase")
}

func TestBalanceWatcherCutoffWithoutIncrease(t *testing.T) {
	var notifications atomic.Int32

	w := &BalanceWatcher{
		Fetch:    func(ctx context.Context) (int64, error) { return 500, nil },
		Interval: 5 * time.Millisecond,
		MaxWait:  40 * time.Millisecond,
		Notify:   func(int64) { notifications.Add(1) },
	}

	increased, err := w.Wait(context.Background(), 500)
	require.NoError(t, err)
	assert.False(t, increased)
	assert.Equal(t, int32(0), notifications.Load())
}

func TestBalanceWatcherSurvivesFetchErrors(t *testing.T) {
	var calls atomic.Int32
	w := &BalanceWatcher{
		Fetch: func(ctx context.Context) (int64, error) {
			if calls.Add(1) == 1 {
				return 0, context.DeadlineExceeded
			}
			return 900, nil
		},
		Interval: 5 * time.Millisecond,
		MaxWait:  time.Second,
	}

	increased, err := w.Wait(context.Background(), 500)
	require.NoError(t, err)
	assert.True(t, increased)
}

func TestBalanceWatcherContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &BalanceWatcher{
		Fetch:    func(ctx context.Context) (int64, error) { return 500, nil },
		Interval: 5 * time.Millisecond,
		MaxWait:  time.Second,
	}

	increased, err := w.Wait(ctx, 500)
	assert.False(t, increased)
	assert.ErrorIs(t, err, context.Canceled)
}
