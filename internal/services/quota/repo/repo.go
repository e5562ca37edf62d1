// Package repo provides postgres access for the quota ledger
package repo

import (
	"context"
	"time"

	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/store"
)

// Repo is the quota storage surface
type Repo interface {
	// Add increments the period row by units, creating it at zero first, and returns the new total
	Add(ctx context.Context, meter string, periodStart time.Time, budget, units int64) (int64, error)

	// Consumed returns the period total, zero when the period has no row yet
	Consumed(ctx context.Context, meter string, periodStart time.Time) (int64, error)
}

type (
	// PG is a Postgres binder for Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Add(ctx context.Context, meter string, periodStart time.Time, budget, units int64) (int64, error) {
	const sql = `
		INSERT INTO quota_ledger (meter, period_start, period_budget, units_consumed, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (meter, period_start) DO UPDATE
		SET units_consumed = quota_ledger.units_consumed + EXCLUDED.units_consumed,
		    period_budget = EXCLUDED.period_budget,
		    updated_at = now()
		RETURNING units_consumed
	`
	return store.Scalar[int64](ctx, r.q, sql, meter, periodStart.UTC(), budget, units)
}

func (r *queries) Consumed(ctx context.Context, meter string, periodStart time.Time) (int64, error) {
	const sql = `
		SELECT COALESCE(
			(SELECT units_consumed FROM quota_ledger WHERE meter = $1 AND period_start = $2),
			0
		)
	`
	return store.Scalar[int64](ctx, r.q, sql, meter, periodStart.UTC())
}
