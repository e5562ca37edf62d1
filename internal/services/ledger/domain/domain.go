// Package domain holds the fetch ledger types and ports
package domain

import (
	"context"
	"time"

	"jobacq/internal/core/combo"
)

// Outcome records how a fetch of a combination ended
type Outcome string

const (
	// OutcomeOK means the provider returned at least one posting
	OutcomeOK Outcome = "ok"

	// OutcomeEmpty means the provider answered with no postings
	OutcomeEmpty Outcome = "empty"

	// OutcomeRejected means the provider refused the query for good
	OutcomeRejected Outcome = "rejected"
)

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeOK, OutcomeEmpty, OutcomeRejected:
		return true
	}
	return false
}

// Entry is one ledger row
type Entry struct {
	Key           combo.Key
	Provider      string
	FetchedAt     time.Time
	PostingsFound int
	Outcome       Outcome
}

// Commit reports whether this caller created (or refreshed) the ledger row.
// Created false means another run got there first
type Commit struct {
	Created bool
}

// ServicePort is what the backfill runner needs from the ledger
type ServicePort interface {
	// DiffUnfetched returns the combinations with no ledger row for provider, in input order
	DiffUnfetched(ctx context.Context, combos []combo.Combination, provider string) ([]combo.Combination, error)

	// Commit records a fetch exactly once per (combination, provider)
	Commit(ctx context.Context, c combo.Combination, provider string, postingsFound int, outcome Outcome) (Commit, error)
}

// ReaderPort serves single ledger rows to the API
type ReaderPort interface {
	Entry(ctx context.Context, c combo.Combination, provider string) (Entry, error)
}
