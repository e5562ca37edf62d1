package domain

import (
	"context"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	// RunForUser backfills the user's live combinations
	RunForUser(ctx context.Context, userID string, w providers.Window) (Result, error)

	// RunSweep backfills every live combination across all users
	RunSweep(ctx context.Context, w providers.Window) (Result, error)
}

// RunRepo records run audit rows
type RunRepo interface {
	StartRun(ctx context.Context, s RunStart) error
	FinishRun(ctx context.Context, runID string, res Result, errText string) error
}

// Claimer holds short-lived in-flight claims so two runners do not pay for the
// same metered call at once. ok false means someone else holds the claim
type Claimer interface {
	Claim(ctx context.Context, provider string, k combo.Key) (release func(), ok bool, err error)
}

// EventSink buffers dispatch events and writes them on Flush
type EventSink interface {
	Add(ev Event)
	Flush(ctx context.Context) error
}
