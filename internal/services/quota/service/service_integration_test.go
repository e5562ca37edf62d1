//go:build integration_pg

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobacq/internal/platform/store/pgtest"
	kit "jobacq/internal/platform/testkit"
	"jobacq/internal/services/quota/repo"
)

func TestRecordUsagePG(t *testing.T) {
	db := pgtest.Open(t)
	p := New(db, repo.NewPG(), Config{Meter: "metered", Budget: 500})
	p.now = kit.Clock(time.Date(2026, 3, 31, 22, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.RecordUsage(ctx, 3); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	proj, err := p.ProjectMonthly(ctx)
	if err != nil || proj.Consumed != 30 {
		t.Fatalf("proj = %+v err=%v", proj, err)
	}

	p.now = kit.Clock(time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC))
	proj, err = p.ProjectMonthly(ctx)
	if err != nil || proj.Consumed != 0 {
		t.Fatalf("april = %+v err=%v", proj, err)
	}
}
