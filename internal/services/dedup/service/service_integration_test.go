//go:build integration_pg

package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"jobacq/internal/core/job"
	"jobacq/internal/platform/store/pgtest"
	"jobacq/internal/services/dedup/domain"
	"jobacq/internal/services/dedup/repo"
)

func TestAdmitPG(t *testing.T) {
	db := pgtest.Open(t)
	s := New(db, repo.NewPG())
	ctx := context.Background()

	pay := 70000.0
	a := rec("A1", "jsearch", "Go Developer", "Acme", "Berlin", "Build things in Go.")
	a.Salary = &job.SalaryRange{Min: &pay, Currency: "EUR", Period: "year"}
	first, err := s.Admit(ctx, a)
	if err != nil || !first.Accepted {
		t.Fatalf("first = %+v err=%v", first, err)
	}

	b := rec("B7", "govboard", "GO Developer", "acme", "Berlin, Deutschland", "Build things in Go.")
	second, err := s.Admit(ctx, b)
	if err != nil || second.Reason != domain.ReasonDuplicate {
		t.Fatalf("second = %+v err=%v", second, err)
	}

	c := rec("C1", "ats", "Rust Developer", "Acme", "Berlin", "")
	if a, err := s.Admit(ctx, c); err != nil || !a.Accepted {
		t.Fatalf("third = %+v err=%v", a, err)
	}

	var n int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM jobs`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("jobs = %d err=%v", n, err)
	}
	stored, err := s.Lookup(ctx, first.Fingerprint)
	if err != nil || stored.ExternalID != "A1" || stored.Salary == nil || *stored.Salary.Min != pay || stored.Salary.Max != nil {
		t.Fatalf("stored = %+v err=%v", stored, err)
	}
}

func TestAdmitRacePG(t *testing.T) {
	db := pgtest.Open(t)
	s := New(db, repo.NewPG())
	ctx := context.Background()

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Admit(ctx, rec("A1", "jsearch", "Go Developer", "Acme", "Berlin", "same body"))
			if err != nil {
				t.Error(err)
				return
			}
			if a.Accepted {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	if accepted.Load() != 1 {
		t.Fatalf("accepted = %d", accepted.Load())
	}
}
