package cli

import (
	"context"
	"time"

	"codeset/pkg/logging"
)

// Balance polling constants.
const (
	// DefaultBalanceInterval is the pause between balance polls after
	// a deposit.
	DefaultBalanceInterval = 2 * time.Second
	// DefaultBalanceMaxWait is the hard cutoff for balance polling.
	// Stripe webhooks usually land well within this window.
	DefaultBalanceMaxWait = 30 * time.Second
)

// BalanceWatcher polls the account balance after a checkout until it
// rises above a baseline or a cutoff fires. It always terminates.
type BalanceWatcher struct {
	// Fetch returns the current balance in cents. Required.
	Fetch func(ctx context.Context) (int64, error)

	// Interval between polls. Defaults to DefaultBalanceInterval.
	Interval time.Duration

	// MaxWait is the unconditional cutoff. Defaults to
	// DefaultBalanceMaxWait.
	MaxWait time.Duration

	// Notify is invoked at most once, with the new balance, when an
	// increase is observed. Optional.
	Notify func(newBalance int64)
}

// Wait polls until the balance exceeds baseline (true), the cutoff
// fires (false, nil), or ctx is cancelled (false, ctx.Err()). Fetch
// errors are treated as transient and polling continues; the cutoff
// bounds the total time regardless.
func (w *BalanceWatcher) Wait(ctx context.Context, baseline int64) (bool, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultBalanceInterval
	}
	maxWait := w.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultBalanceMaxWait
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	cutoff := time.NewTimer(maxWait)
	defer cutoff.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-cutoff.C:
			return false, nil
		case <-ticker.C:
			balance, err := w.Fetch(ctx)
			if err != nil {
				logging.Debug("BalanceWatch", "Balance poll failed: %v", err)
				continue
			}
			if balance > baseline {
				if w.Notify != nil {
					w.Notify(balance)
				}
				return true, nil
			}
		}
	}
}
