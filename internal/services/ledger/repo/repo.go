// Package repo provides postgres access for the combination ledger
package repo

import (
	"context"
	"time"

	"jobacq/internal/core/combo"
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/store"
	"jobacq/internal/services/ledger/domain"
)

// Repo is the ledger storage surface
type Repo interface {
	// FetchedKeys lists every key with a ledger row for provider. Rows whose outcome
	// is empty and whose fetched_at is before emptyBefore are left out so they count as unfetched
	FetchedKeys(ctx context.Context, provider string, emptyBefore *time.Time) ([]combo.Key, error)

	// Insert writes the row if absent, or refreshes a stale empty row. It reports
	// whether this call wrote anything
	Insert(ctx context.Context, k combo.Key, provider string, found int, outcome domain.Outcome, emptyBefore *time.Time) (bool, error)

	// Get returns the row for (k, provider)
	Get(ctx context.Context, k combo.Key, provider string) (domain.Entry, error)
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

func (r *queries) FetchedKeys(ctx context.Context, provider string, emptyBefore *time.Time) ([]combo.Key, error) {
	const sql = `
		SELECT DISTINCT title, location, work_arrangement, employment_type, seniority, industry
		FROM combination_ledger
		WHERE provider = $1
		  AND NOT ($2::timestamptz IS NOT NULL AND outcome = 'empty' AND fetched_at < $2::timestamptz)
	`
	return store.Many(ctx, r.q, scanKey, sql, provider, emptyBefore)
}

func (r *queries) Insert(
	ctx context.Context, k combo.Key, provider string, found int, outcome domain.Outcome, emptyBefore *time.Time,
) (bool, error) {
	// the conflict arm only fires for an empty row older than the cutoff; a row
	// just written by a concurrent run is never older, so at most one caller sees true
	const sql = `
		INSERT INTO combination_ledger (
			title, location, work_arrangement, employment_type, seniority, industry,
			provider, fetched_at, postings_found, outcome
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8, $9)
		ON CONFLICT ON CONSTRAINT combination_ledger_uq DO UPDATE
		SET fetched_at = now(),
		    postings_found = EXCLUDED.postings_found,
		    outcome = EXCLUDED.outcome
		WHERE $10::timestamptz IS NOT NULL
		  AND combination_ledger.outcome = 'empty'
		  AND combination_ledger.fetched_at < $10::timestamptz
		RETURNING true
	`
	var created bool
	err := r.q.QueryRow(ctx, sql,
		k.Title, k.Location, k.WorkArrangement, k.EmploymentType, k.Seniority, k.Industry,
		provider, found, string(outcome), emptyBefore,
	).Scan(&created)
	if store.NoRows(err) {
		return false, nil
	}
	return created, err
}

func (r *queries) Get(ctx context.Context, k combo.Key, provider string) (domain.Entry, error) {
	const sql = `
		SELECT title, location, work_arrangement, employment_type, seniority, industry,
		       provider, fetched_at, postings_found, outcome
		FROM combination_ledger
		WHERE title = $1 AND location = $2 AND work_arrangement = $3
		  AND employment_type = $4 AND seniority = $5 AND industry = $6
		  AND provider = $7
	`
	return store.One(ctx, r.q, scanEntry, sql,
		k.Title, k.Location, k.WorkArrangement, k.EmploymentType, k.Seniority, k.Industry, provider)
}

func scanKey(row store.Row) (combo.Key, error) {
	var k combo.Key
	err := row.Scan(&k.Title, &k.Location, &k.WorkArrangement, &k.EmploymentType, &k.Seniority, &k.Industry)
	return k, err
}

func scanEntry(row store.Row) (domain.Entry, error) {
	var (
		e       domain.Entry
		outcome string
	)
	err := row.Scan(
		&e.Key.Title, &e.Key.Location, &e.Key.WorkArrangement, &e.Key.EmploymentType, &e.Key.Seniority, &e.Key.Industry,
		&e.Provider, &e.FetchedAt, &e.PostingsFound, &outcome,
	)
	e.Outcome = domain.Outcome(outcome)
	return e, err
}
