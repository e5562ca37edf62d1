package service

import (
	"context"
	"errors"
	"testing"

	"jobacq/internal/core/job"
	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/services/dedup/domain"
	"jobacq/internal/services/dedup/repo"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (d nopDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error     { return fn(d) }

// fakeRepo enforces both unique constraints of the jobs table
type fakeRepo struct {
	byFP     map[string]job.Record
	bySource map[string]bool
	err      error
}

func newFake() *fakeRepo {
	return &fakeRepo{byFP: map[string]job.Record{}, bySource: map[string]bool{}}
}

func (f *fakeRepo) Insert(_ context.Context, rec job.Record) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	src := rec.Provider + "/" + rec.ExternalID
	if _, ok := f.byFP[rec.Fingerprint]; ok || f.bySource[src] {
		return false, nil
	}
	f.byFP[rec.Fingerprint] = rec
	f.bySource[src] = true
	return true, nil
}

func (f *fakeRepo) ByFingerprint(_ context.Context, fp string) (job.Record, error) {
	rec, ok := f.byFP[fp]
	if !ok {
		return job.Record{}, perr.ErrNotFound
	}
	return rec, nil
}

func newSvc(f *fakeRepo) *Svc {
	return New(nopDB{}, repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return f }))
}

func rec(id, provider, title, company, location, desc string) job.Record {
	return job.Record{ExternalID: id, Provider: provider, Title: title, Company: company, Location: location, Description: desc}
}

func TestAdmitFirstWriterWins(t *testing.T) {
	f := newFake()
	s := newSvc(f)
	ctx := context.Background()

	a := rec("A1", "jsearch", "Go Developer", "Acme", "Berlin", "Build things in Go.")
	b := rec("B7", "govboard", "go developer", "ACME", "Berlin, Germany", "Build things in Go.")

	first, err := s.Admit(ctx, a)
	if err != nil || !first.Accepted || first.Reason != domain.ReasonAccepted || first.Fingerprint == "" {
		t.Fatalf("first = %+v err=%v", first, err)
	}
	second, err := s.Admit(ctx, b)
	if err != nil || second.Accepted || second.Reason != domain.ReasonDuplicate {
		t.Fatalf("second = %+v err=%v", second, err)
	}
	if second.Fingerprint != first.Fingerprint {
		t.Fatalf("fingerprints differ: %s vs %s", first.Fingerprint, second.Fingerprint)
	}
	stored, err := s.Lookup(ctx, first.Fingerprint)
	if err != nil || stored.Provider != "jsearch" || stored.ExternalID != "A1" {
		t.Fatalf("stored = %+v err=%v", stored, err)
	}
}

func TestAdmitSameSourceIDIsDuplicate(t *testing.T) {
	s := newSvc(newFake())
	ctx := context.Background()
	_, _ = s.Admit(ctx, rec("X", "ats", "SRE", "Initech", "Remote", "pager"))
	a, err := s.Admit(ctx, rec("X", "ats", "SRE", "Initech", "Remote", "pager, edited"))
	if err != nil || a.Reason != domain.ReasonDuplicate {
		t.Fatalf("admission = %+v err=%v", a, err)
	}
}

func TestAdmitInvalid(t *testing.T) {
	tests := []struct {
		name  string
		rec   job.Record
		field string
	}{
		{"empty company", rec("1", "ats", "SRE", "", "Berlin", ""), "company"},
		{"blank title", rec("1", "ats", "  ", "Initech", "Berlin", ""), "title"},
		{"no location", rec("1", "ats", "SRE", "Initech", "", ""), "location"},
		{"no provider", rec("1", "", "SRE", "Initech", "Berlin", ""), "provider"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFake()
			a, err := newSvc(f).Admit(context.Background(), tc.rec)
			if err != nil {
				t.Fatalf("invalid records must not error: %v", err)
			}
			if a.Accepted || a.Reason != domain.ReasonInvalid || a.Field != tc.field {
				t.Fatalf("admission = %+v", a)
			}
			if len(f.byFP) != 0 {
				t.Fatal("invalid record was stored")
			}
		})
	}
}

func TestAdmitAll(t *testing.T) {
	s := newSvc(newFake())
	tally, err := s.AdmitAll(context.Background(), []job.Record{
		rec("1", "ats", "SRE", "Initech", "Berlin", "a"),
		rec("2", "ats", "SRE", "Initech", "Berlin", "a"),
		rec("3", "ats", "SRE", "", "Berlin", "a"),
		rec("4", "ats", "Platform Engineer", "Initech", "Berlin", "b"),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Tally{Accepted: 2, Duplicate: 1, Invalid: 1}
	if tally != want || tally.Total() != 4 {
		t.Fatalf("tally = %+v", tally)
	}
}

func TestAdmitStorageError(t *testing.T) {
	f := newFake()
	f.err = errors.New("connection refused")
	s := newSvc(f)

	tally, err := s.AdmitAll(context.Background(), []job.Record{rec("1", "ats", "SRE", "Initech", "Berlin", "a")})
	if !perr.IsConnectivity(err) || tally.Total() != 0 {
		t.Fatalf("tally=%+v err=%v", tally, err)
	}
}
