// Package repo provides postgres access for the shared job corpus
package repo

import (
	"context"

	"jobacq/internal/core/job"
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/store"
)

// Repo is the job corpus storage surface
type Repo interface {
	// Insert stores rec unless its fingerprint or (external_id, provider) is taken.
	// It reports whether the row was written
	Insert(ctx context.Context, rec job.Record) (bool, error)

	// ByFingerprint loads a stored record
	ByFingerprint(ctx context.Context, fp string) (job.Record, error)
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

func (r *queries) Insert(ctx context.Context, rec job.Record) (bool, error) {
	// no conflict target: either unique constraint turns the insert into a no-op
	const sql = `
		INSERT INTO jobs (
			external_id, provider, title, company, location, description, url,
			posted_date, salary_min, salary_max, salary_currency, salary_period,
			content_fingerprint
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13)
		ON CONFLICT DO NOTHING
		RETURNING id
	`
	var (
		minPay, maxPay   *float64
		currency, period string
	)
	if s := rec.Salary; s != nil {
		minPay, maxPay, currency, period = s.Min, s.Max, s.Currency, s.Period
	}

	var id int64
	err := r.q.QueryRow(ctx, sql,
		rec.ExternalID, rec.Provider, rec.Title, rec.Company, rec.Location, rec.Description, rec.URL,
		rec.PostedDate, minPay, maxPay, currency, period,
		rec.Fingerprint,
	).Scan(&id)
	if store.NoRows(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *queries) ByFingerprint(ctx context.Context, fp string) (job.Record, error) {
	const sql = `
		SELECT external_id, provider, title, company, location, description, url, posted_date,
		       salary_min, salary_max, COALESCE(salary_currency, ''), COALESCE(salary_period, ''),
		       content_fingerprint
		FROM jobs
		WHERE content_fingerprint = $1
	`
	return store.One(ctx, r.q, scanRecord, sql, fp)
}

func scanRecord(row store.Row) (job.Record, error) {
	var (
		rec job.Record
		sal job.SalaryRange
	)
	err := row.Scan(
		&rec.ExternalID, &rec.Provider, &rec.Title, &rec.Company, &rec.Location, &rec.Description, &rec.URL,
		&rec.PostedDate, &sal.Min, &sal.Max, &sal.Currency, &sal.Period, &rec.Fingerprint,
	)
	if sal.Min != nil || sal.Max != nil || sal.Currency != "" || sal.Period != "" {
		rec.Salary = &sal
	}
	return rec, err
}
