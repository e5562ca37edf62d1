//go:build integration_pg

package service

import (
	"context"
	"testing"

	"jobacq/internal/core/combo"
	"jobacq/internal/platform/store/pgtest"
	"jobacq/internal/services/prefs/repo"
)

func TestSetPG(t *testing.T) {
	db := pgtest.Open(t)
	s := New(db, repo.NewPG())
	ctx := context.Background()

	if _, err := s.Set(ctx, "u1", combo.Preferences{
		DesiredTitles:    []string{"Go Developer", "SRE"},
		DesiredLocations: []string{"Berlin"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set(ctx, "u2", combo.Preferences{
		DesiredTitles:    []string{"go developer"},
		DesiredLocations: []string{"berlin"},
	}); err != nil {
		t.Fatal(err)
	}

	res, err := s.Set(ctx, "u1", combo.Preferences{
		DesiredTitles:    []string{"Go Developer"},
		DesiredLocations: []string{"Berlin"},
	})
	if err != nil || res.Kept != 1 || res.Superseded != 1 || res.Added != 0 {
		t.Fatalf("res = %+v err=%v", res, err)
	}

	live, err := s.ForUser(ctx, "u1")
	if err != nil || len(live) != 1 || live[0].Combination.Title != "Go Developer" {
		t.Fatalf("live = %+v err=%v", live, err)
	}

	all, err := s.DistinctCombinations(ctx)
	if err != nil || len(all) != 1 || all[0].Title != "Go Developer" {
		t.Fatalf("distinct = %+v err=%v", all, err)
	}

	if _, err := s.Set(ctx, "u3", combo.Preferences{
		DesiredTitles:   []string{"Data Engineer"},
		WorkArrangement: "Remote",
		Seniority:       "Senior",
		Industry:        "FinTech",
	}); err != nil {
		t.Fatal(err)
	}
	u3, err := s.ForUser(ctx, "u3")
	if err != nil || len(u3) != 1 {
		t.Fatalf("u3 = %+v err=%v", u3, err)
	}
	if c := u3[0].Combination; c.WorkArrangement != "Remote" || c.Seniority != "Senior" || c.Industry != "FinTech" {
		t.Fatalf("filters lost display casing: %+v", c)
	}

	var total int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM search_rows`).Scan(&total); err != nil || total != 4 {
		t.Fatalf("rows = %d err=%v", total, err)
	}
}
