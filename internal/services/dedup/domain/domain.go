// Package domain holds the dedup admission types and ports
package domain

import (
	"context"

	"jobacq/internal/core/job"
)

// Reason says why a record was or was not admitted
type Reason string

const (
	// ReasonAccepted means the record was stored
	ReasonAccepted Reason = "accepted"

	// ReasonDuplicate means a record with the same fingerprint or source id already exists
	ReasonDuplicate Reason = "duplicate"

	// ReasonInvalid means the record failed validation and was dropped
	ReasonInvalid Reason = "invalid"
)

// Admission is the result of admitting one record
type Admission struct {
	Accepted    bool
	Reason      Reason
	Fingerprint string

	// Field names the failing field when Reason is invalid
	Field string
}

// Tally sums admissions over a batch
type Tally struct {
	Accepted  int
	Duplicate int
	Invalid   int
}

// Add counts a
func (t *Tally) Add(a Admission) {
	switch a.Reason {
	case ReasonAccepted:
		t.Accepted++
	case ReasonDuplicate:
		t.Duplicate++
	case ReasonInvalid:
		t.Invalid++
	}
}

// Total is the number of records seen
func (t Tally) Total() int { return t.Accepted + t.Duplicate + t.Invalid }

// ServicePort is what the backfill runner needs from dedup
type ServicePort interface {
	Admit(ctx context.Context, rec job.Record) (Admission, error)
	AdmitAll(ctx context.Context, recs []job.Record) (Tally, error)
}

// ReaderPort looks stored records up by fingerprint
type ReaderPort interface {
	Lookup(ctx context.Context, fp string) (job.Record, error)
}
