// Package domain holds the backfill run types and the ports the runner drives
package domain

import (
	"time"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
)

// Trigger says what started a run
type Trigger string

const (
	// TriggerUser is an on-demand run after a preferences update
	TriggerUser Trigger = "user"

	// TriggerSweep is a periodic run over every live combination
	TriggerSweep Trigger = "sweep"
)

// Result summarizes one run. The first four fields are the headline numbers;
// the rest break down what happened to each dispatch.
type Result struct {
	RunID string `json:"run_id"`

	NewCombinations  int    `json:"new_combinations"`
	PostingsFetched  int    `json:"postings_fetched"`
	PostingsAccepted int    `json:"postings_accepted_after_dedup"`
	QuotaStatus      string `json:"quota_status"`

	Dispatched       int `json:"dispatched"`
	FailedTransient  int `json:"failed_transient"`
	FailedPermanent  int `json:"failed_permanent"`
	Conflicts        int `json:"conflicts"`
	SkippedQuota     int `json:"skipped_quota"`
	ClaimedElsewhere int `json:"claimed_elsewhere"`
	Invalid          int `json:"invalid_records"`

	// Partial is set when quota or an abort left combinations undispatched
	Partial bool `json:"partial"`
}

// Outcome of one dispatch, as recorded in events
type Outcome string

// Dispatch outcomes; the first three mirror the ledger outcomes
const (
	OutcomeOK           Outcome = "ok"
	OutcomeEmpty        Outcome = "empty"
	OutcomeRejected     Outcome = "rejected"
	OutcomeTransient    Outcome = "transient"
	OutcomeSkippedQuota Outcome = "skipped_quota"
	OutcomeClaimed      Outcome = "claimed_elsewhere"
	OutcomeStorage      Outcome = "storage_error"
)

// Event is one dispatch as written to the event sink
type Event struct {
	RunID    string
	At       time.Time
	Provider string
	Key      combo.Key
	Window   providers.Window
	Outcome  Outcome
	Items    int
	Accepted int
	Elapsed  time.Duration
	Err      string
}

// RunStart is what the audit row records up front
type RunStart struct {
	RunID   string
	Trigger Trigger
	UserID  string
	Window  providers.Window
}
