// Package service turns preference documents into live search rows
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"jobacq/internal/core/combo"
	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
	"jobacq/internal/platform/validate"
	"jobacq/internal/services/prefs/domain"
	"jobacq/internal/services/prefs/repo"
)

// Svc implements domain.ServicePort and domain.CandidatesPort
type Svc struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Repo]

	newID func() string
}

// New constructs the prefs service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("prefs.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("prefs.Service requires a non nil Repo binder")
	}
	return &Svc{DB: db, Binder: binder, newID: func() string { return uuid.NewString() }}
}

var (
	_ domain.ServicePort    = (*Svc)(nil)
	_ domain.CandidatesPort = (*Svc)(nil)
)

// Set replaces the user's live combinations with the expansion of p. Rows still
// wanted stay live untouched, rows no longer wanted are superseded, and the rest
// are inserted, all in one transaction.
func (s *Svc) Set(ctx context.Context, userID string, p combo.Preferences) (domain.SetResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.SetResult{}, perr.WithField(perr.Validationf("user id is required"), "user_id")
	}
	if err := validate.Struct(p); err != nil {
		return domain.SetResult{}, err
	}

	want := combo.Expand(p)
	res := domain.SetResult{Combinations: want}

	err := repokit.WithTx(ctx, s.DB, s.Binder, func(r repo.Repo) error {
		live, err := r.Live(ctx, userID)
		if err != nil {
			return err
		}

		wanted := make(map[combo.Key]struct{}, len(want))
		for _, c := range want {
			wanted[c.Key()] = struct{}{}
		}
		have := make(map[combo.Key]struct{}, len(live))
		var stale []string
		for _, row := range live {
			k := row.Combination.Key()
			if _, ok := wanted[k]; ok {
				have[k] = struct{}{}
				continue
			}
			stale = append(stale, row.ID)
		}

		n, err := r.Supersede(ctx, userID, stale)
		if err != nil {
			return err
		}
		res.Superseded = int(n)

		for _, c := range want {
			if _, ok := have[c.Key()]; ok {
				res.Kept++
				continue
			}
			ok, err := r.Insert(ctx, domain.SearchRow{ID: s.newID(), UserID: userID, Combination: c})
			if err != nil {
				return err
			}
			if ok {
				res.Added++
			} else {
				res.Kept++
			}
		}
		return nil
	})
	if err != nil {
		return domain.SetResult{}, perr.FromPostgresf(err, "prefs: set for %s", userID)
	}

	logger.C(ctx).Info().
		Str("user_id", userID).
		Int("combinations", len(want)).
		Int("added", res.Added).
		Int("kept", res.Kept).
		Int("superseded", res.Superseded).
		Msg("prefs: search rows updated")
	return res, nil
}

// ForUser lists the user's live rows
func (s *Svc) ForUser(ctx context.Context, userID string) ([]domain.SearchRow, error) {
	rows, err := s.Binder.Bind(s.DB).Live(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, perr.FromPostgres(err, "prefs: live rows")
	}
	return rows, nil
}

// UserCombinations implements domain.CandidatesPort
func (s *Svc) UserCombinations(ctx context.Context, userID string) ([]combo.Combination, error) {
	rows, err := s.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]combo.Combination, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Combination)
	}
	return out, nil
}

// DistinctCombinations implements domain.CandidatesPort
func (s *Svc) DistinctCombinations(ctx context.Context) ([]combo.Combination, error) {
	cs, err := s.Binder.Bind(s.DB).DistinctLive(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "prefs: distinct live combinations")
	}
	return cs, nil
}
