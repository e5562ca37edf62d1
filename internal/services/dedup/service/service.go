// Package service admits provider records into the shared job corpus
package service

import (
	"context"

	"jobacq/internal/core/job"
	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
	"jobacq/internal/platform/validate"
	"jobacq/internal/services/dedup/domain"
	"jobacq/internal/services/dedup/repo"
)

// Svc implements domain.ServicePort
type Svc struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Repo]
}

// New constructs the dedup service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("dedup.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("dedup.Service requires a non nil Repo binder")
	}
	return &Svc{DB: db, Binder: binder}
}

var (
	_ domain.ServicePort = (*Svc)(nil)
	_ domain.ReaderPort  = (*Svc)(nil)
)

// Admit validates rec, fingerprints it and stores it unless an equal posting
// exists. Invalid records are dropped with a warning and never returned as errors
func (s *Svc) Admit(ctx context.Context, rec job.Record) (domain.Admission, error) {
	if err := validate.Struct(rec); err != nil {
		field := ""
		if e, ok := perr.As(err); ok {
			field = e.Field()
		}
		logger.C(ctx).Warn().
			Str("provider", rec.Provider).
			Str("external_id", rec.ExternalID).
			Str("field", field).
			Msg("dedup: dropping invalid record")
		return domain.Admission{Reason: domain.ReasonInvalid, Field: field}, nil
	}

	rec = rec.Fingerprinted()
	ok, err := s.Binder.Bind(s.DB).Insert(ctx, rec)
	if err != nil {
		return domain.Admission{}, perr.FromPostgresf(err, "dedup: insert %s/%s", rec.Provider, rec.ExternalID)
	}
	if !ok {
		return domain.Admission{Reason: domain.ReasonDuplicate, Fingerprint: rec.Fingerprint}, nil
	}
	return domain.Admission{Accepted: true, Reason: domain.ReasonAccepted, Fingerprint: rec.Fingerprint}, nil
}

// AdmitAll admits recs in order and stops at the first storage error, returning
// the tally so far
func (s *Svc) AdmitAll(ctx context.Context, recs []job.Record) (domain.Tally, error) {
	var t domain.Tally
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		a, err := s.Admit(ctx, rec)
		if err != nil {
			return t, err
		}
		t.Add(a)
	}
	return t, nil
}

// Lookup returns the stored record for a fingerprint
func (s *Svc) Lookup(ctx context.Context, fp string) (job.Record, error) {
	rec, err := s.Binder.Bind(s.DB).ByFingerprint(ctx, fp)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return job.Record{}, perr.FromPostgres(err, "dedup: lookup")
	}
	return rec, err
}
