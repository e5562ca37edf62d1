// Package service implements the global fetch ledger
package service

import (
	"context"
	"strings"
	"time"

	"jobacq/internal/core/combo"
	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
	"jobacq/internal/services/ledger/domain"
	"jobacq/internal/services/ledger/repo"
)

// Config tunes the ledger
type Config struct {
	// EmptyRetryAfter lets an empty outcome older than this be fetched again; zero keeps empty rows forever
	EmptyRetryAfter time.Duration
}

// Svc implements domain.ServicePort
type Svc struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Repo]
	Cfg    Config

	now func() time.Time
}

// New constructs the ledger service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config) *Svc {
	if db == nil {
		panic("ledger.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ledger.Service requires a non nil Repo binder")
	}
	return &Svc{DB: db, Binder: binder, Cfg: cfg, now: time.Now}
}

var (
	_ domain.ServicePort = (*Svc)(nil)
	_ domain.ReaderPort  = (*Svc)(nil)
)

// DiffUnfetched reads the provider's fetched keys in one query and returns the
// combos not among them. Combos that share a key collapse to the first one.
func (s *Svc) DiffUnfetched(ctx context.Context, combos []combo.Combination, provider string) ([]combo.Combination, error) {
	if len(combos) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(provider) == "" {
		return nil, perr.InvalidArgf("provider is required")
	}

	keys, err := s.Binder.Bind(s.DB).FetchedKeys(ctx, provider, s.emptyCutoff())
	if err != nil {
		return nil, perr.FromPostgresf(err, "ledger: fetched keys for %s", provider)
	}
	seen := make(map[combo.Key]struct{}, len(keys)+len(combos))
	for _, k := range keys {
		seen[k] = struct{}{}
	}

	var out []combo.Combination
	for _, c := range combos {
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Commit writes the ledger row for (c, provider). The write and the existence
// check are one statement, so concurrent callers see exactly one Created.
func (s *Svc) Commit(
	ctx context.Context, c combo.Combination, provider string, postingsFound int, outcome domain.Outcome,
) (domain.Commit, error) {
	if strings.TrimSpace(provider) == "" {
		return domain.Commit{}, perr.InvalidArgf("provider is required")
	}
	if !outcome.Valid() {
		return domain.Commit{}, perr.InvalidArgf("unknown outcome %q", outcome)
	}
	if postingsFound < 0 {
		postingsFound = 0
	}

	k := c.Key()
	created, err := s.Binder.Bind(s.DB).Insert(ctx, k, provider, postingsFound, outcome, s.emptyCutoff())
	if err != nil {
		return domain.Commit{}, perr.FromPostgresf(err, "ledger: commit %s/%s", provider, k)
	}
	if !created {
		logger.C(ctx).Debug().
			Str("provider", provider).
			Str("combination", k.String()).
			Msg("ledger: row already committed")
	}
	return domain.Commit{Created: created}, nil
}

// Entry returns the ledger row for (c, provider)
func (s *Svc) Entry(ctx context.Context, c combo.Combination, provider string) (domain.Entry, error) {
	e, err := s.Binder.Bind(s.DB).Get(ctx, c.Key(), provider)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Entry{}, err
		}
		return domain.Entry{}, perr.FromPostgres(err, "ledger: get entry")
	}
	return e, nil
}

func (s *Svc) emptyCutoff() *time.Time {
	if s.Cfg.EmptyRetryAfter <= 0 {
		return nil
	}
	t := s.now().Add(-s.Cfg.EmptyRetryAfter).UTC()
	return &t
}
