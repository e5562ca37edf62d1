// Package repo provides the backfill run audit in postgres and the dispatch
// event sink in clickhouse
package repo

import (
	"context"

	"jobacq/internal/modkit/repokit"
	"jobacq/internal/services/backfill/domain"
)

type (
	// PG is a Postgres binder for domain.RunRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.RunRepo
func NewPG() repokit.Binder[domain.RunRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.RunRepo { return &queries{q: q} }

// StartRun inserts the audit row (idempotent on run id)
func (r *queries) StartRun(ctx context.Context, s domain.RunStart) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO backfill_runs (run_id, trigger, user_id, window_label, started_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, now())
		ON CONFLICT (run_id) DO NOTHING
	`, s.RunID, string(s.Trigger), s.UserID, s.Window.String())
	return err
}

// FinishRun stamps the counters and any error text
func (r *queries) FinishRun(ctx context.Context, runID string, res domain.Result, errText string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE backfill_runs SET
			finished_at = now(),
			new_combinations = $2,
			postings_fetched = $3,
			postings_accepted = $4,
			quota_status = NULLIF($5, ''),
			partial = $6,
			error = NULLIF($7, '')
		WHERE run_id = $1
	`,
		runID, res.NewCombinations, res.PostingsFetched, res.PostingsAccepted,
		res.QuotaStatus, res.Partial, errText,
	)
	return err
}
