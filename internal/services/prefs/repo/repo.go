// Package repo provides postgres access for search rows
package repo

import (
	"context"

	"jobacq/internal/core/combo"
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/store"
	"jobacq/internal/services/prefs/domain"
)

// Repo is the search row storage surface
type Repo interface {
	// Live lists the user's live rows oldest first
	Live(ctx context.Context, userID string) ([]domain.SearchRow, error)

	// Supersede stamps superseded_at on the given live rows and returns how many changed
	Supersede(ctx context.Context, userID string, ids []string) (int64, error)

	// Insert adds a live row; false when an equal live row already exists
	Insert(ctx context.Context, row domain.SearchRow) (bool, error)

	// DistinctLive lists every live combination once
	DistinctLive(ctx context.Context) ([]combo.Combination, error)
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

func (r *queries) Live(ctx context.Context, userID string) ([]domain.SearchRow, error) {
	const sql = `
		SELECT id::text, user_id, title_display, location_display,
		       work_arrangement_display, employment_type_display, seniority_display, industry_display,
		       created_at, superseded_at
		FROM search_rows
		WHERE user_id = $1 AND superseded_at IS NULL
		ORDER BY created_at, id
	`
	return store.Many(ctx, r.q, scanRow, sql, userID)
}

func (r *queries) Supersede(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const sql = `
		UPDATE search_rows
		SET superseded_at = now()
		WHERE user_id = $1 AND id::text = ANY($2::text[]) AND superseded_at IS NULL
	`
	return store.Exec(ctx, r.q, sql, userID, ids)
}

func (r *queries) Insert(ctx context.Context, row domain.SearchRow) (bool, error) {
	// the partial unique index over live rows makes a concurrent equal insert a no-op
	const sql = `
		INSERT INTO search_rows (
			id, user_id, title, location, work_arrangement, employment_type, seniority, industry,
			title_display, location_display,
			work_arrangement_display, employment_type_display, seniority_display, industry_display
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT DO NOTHING
	`
	c := row.Combination
	k := c.Key()
	n, err := store.Exec(ctx, r.q, sql,
		row.ID, row.UserID, k.Title, k.Location, k.WorkArrangement, k.EmploymentType, k.Seniority, k.Industry,
		c.Title, c.Location, c.WorkArrangement, c.EmploymentType, c.Seniority, c.Industry,
	)
	return n == 1, err
}

func (r *queries) DistinctLive(ctx context.Context) ([]combo.Combination, error) {
	// display casing comes from the earliest row so repeated sweeps query identically
	const sql = `
		SELECT DISTINCT ON (title, location, work_arrangement, employment_type, seniority, industry)
		       title_display, location_display,
		       work_arrangement_display, employment_type_display, seniority_display, industry_display
		FROM search_rows
		WHERE superseded_at IS NULL
		ORDER BY title, location, work_arrangement, employment_type, seniority, industry, created_at
	`
	return store.Many(ctx, r.q, scanCombination, sql)
}

func scanRow(row store.Row) (domain.SearchRow, error) {
	var s domain.SearchRow
	c := &s.Combination
	err := row.Scan(&s.ID, &s.UserID, &c.Title, &c.Location,
		&c.WorkArrangement, &c.EmploymentType, &c.Seniority, &c.Industry,
		&s.CreatedAt, &s.SupersededAt)
	return s, err
}

func scanCombination(row store.Row) (combo.Combination, error) {
	var c combo.Combination
	err := row.Scan(&c.Title, &c.Location, &c.WorkArrangement, &c.EmploymentType, &c.Seniority, &c.Industry)
	return c, err
}
