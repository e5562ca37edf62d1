// Package guardrails holds cross cutting safety helpers for backfill
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for a single dispatch.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Dispatch caps one provider search including its pages and retries
	Dispatch time.Duration

	// DB caps each storage step: admit, ledger commit, quota record
	DB time.Duration
}

// ForDispatch returns a sub context for the provider call bounded by Dispatch and any remaining parent budget
func ForDispatch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Dispatch)
}

// ForDB returns a sub context for a storage step bounded by DB and any remaining parent budget
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of d and the parent remainder; it never
// extends the parent deadline. Zero d still returns a cancelable child
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
