package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	kit "jobacq/internal/platform/testkit"
	"jobacq/internal/services/quota/domain"
	"jobacq/internal/services/quota/repo"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (d nopDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error     { return fn(d) }

type fakeRepo struct {
	mu   sync.Mutex
	rows map[string]int64
}

func key(meter string, start time.Time) string { return meter + "@" + start.Format(time.RFC3339) }

func (f *fakeRepo) Add(_ context.Context, meter string, start time.Time, _ int64, units int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[key(meter, start)] += units
	return f.rows[key(meter, start)], nil
}

func (f *fakeRepo) Consumed(_ context.Context, meter string, start time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[key(meter, start)], nil
}

func newProjector(budget int64, now time.Time) (*Projector, *fakeRepo) {
	f := &fakeRepo{rows: map[string]int64{}}
	p := New(nopDB{}, repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return f }), Config{Meter: "metered", Budget: budget})
	p.now = kit.Clock(now)
	return p, f
}

func TestPeriodHelpers(t *testing.T) {
	tests := []struct {
		at    time.Time
		start time.Time
		days  int
	}{
		{time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2028, 2, 29, 23, 0, 0, 0, time.UTC), time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC), time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), 31},
		// 00:30 in Berlin on Oct 1 is still September in UTC
		{time.Date(2026, 10, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*3600)), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tc := range tests {
		if got := PeriodStart(tc.at); !got.Equal(tc.start) {
			t.Fatalf("PeriodStart(%v) = %v want %v", tc.at, got, tc.start)
		}
		if got := DaysIn(tc.start); got != tc.days {
			t.Fatalf("DaysIn(%v) = %d want %d", tc.start, got, tc.days)
		}
	}
}

func TestProjectMonthly(t *testing.T) {
	// day 10 of a 30 day month with 3000 consumed projects to 9000
	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	p, _ := newProjector(10000, now)
	ctx := context.Background()

	if _, err := p.RecordUsage(ctx, 3000); err != nil {
		t.Fatal(err)
	}
	proj, err := p.ProjectMonthly(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if proj.DaysElapsed != 10 || proj.DaysInPeriod != 30 || proj.Consumed != 3000 {
		t.Fatalf("proj = %+v", proj)
	}
	if math.Abs(proj.ProjectedTotal-9000) > 1e-9 || math.Abs(proj.UtilizationPct-90) > 1e-9 {
		t.Fatalf("projected = %v pct = %v", proj.ProjectedTotal, proj.UtilizationPct)
	}
}

func TestCheckBudget(t *testing.T) {
	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		budget   int64
		consumed int
		want     domain.Status
	}{
		{"idle", 10000, 0, domain.StatusOK},
		{"at ninety percent is not above it", 10000, 3000, domain.StatusOK},
		{"projection above threshold", 10000, 3001, domain.StatusWarning},
		{"exactly at budget", 10000, 10000, domain.StatusWarning},
		{"over budget", 10000, 10001, domain.StatusExceeded},
		{"zero budget idle", 0, 0, domain.StatusWarning},
		{"zero budget used", 0, 1, domain.StatusExceeded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := newProjector(tc.budget, now)
			ctx := context.Background()
			if _, err := p.RecordUsage(ctx, tc.consumed); err != nil {
				t.Fatal(err)
			}
			c, err := p.CheckBudget(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if c.Status != tc.want {
				t.Fatalf("status = %s want %s (%s)", c.Status, tc.want, c)
			}
			if c.Exceeded() != (tc.want == domain.StatusExceeded) {
				t.Fatalf("Exceeded() = %v", c.Exceeded())
			}
		})
	}
}

func TestRecordUsageMonotonic(t *testing.T) {
	p, _ := newProjector(1000, time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.RecordUsage(ctx, 5); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	prev := int64(0)
	for _, u := range []int{0, 1, 0, 7} {
		total, err := p.RecordUsage(ctx, u)
		if err != nil {
			t.Fatal(err)
		}
		if total < prev {
			t.Fatalf("consumption went down: %d -> %d", prev, total)
		}
		prev = total
	}
	if prev != 108 {
		t.Fatalf("total = %d want 108", prev)
	}

	if _, err := p.RecordUsage(ctx, -1); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("negative units err = %v", err)
	}
}

func TestPeriodRollover(t *testing.T) {
	p, f := newProjector(100, time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC))
	ctx := context.Background()
	if _, err := p.RecordUsage(ctx, 150); err != nil {
		t.Fatal(err)
	}
	c, _ := p.CheckBudget(ctx)
	if !c.Exceeded() {
		t.Fatalf("january should be exceeded: %s", c)
	}

	p.now = kit.Clock(time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC))
	c, _ = p.CheckBudget(ctx)
	if c.Status != domain.StatusOK || c.Projection.Consumed != 0 || c.Projection.DaysElapsed != 1 {
		t.Fatalf("february should start fresh: %s", c)
	}
	if len(f.rows) != 1 {
		t.Fatalf("rows = %v", f.rows)
	}
}

func TestCheckString(t *testing.T) {
	p, _ := newProjector(10000, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = p.RecordUsage(ctx, 4000)
	c, _ := p.CheckBudget(ctx)
	s := c.String()
	for _, want := range []string{"metered", "2026-10", "4000/10000", "day 16/31", "status"} {
		kit.MustContain(t, s, want)
	}
	if !strings.HasSuffix(s, string(c.Status)) {
		t.Fatalf("summary %q", s)
	}
}

func TestNewDefaults(t *testing.T) {
	p := New(nopDB{}, repo.NewPG(), Config{Budget: 10})
	if p.Cfg.Meter != "default" || p.Cfg.WarnAt != 0.9 {
		t.Fatalf("cfg = %+v", p.Cfg)
	}
	kit.MustPanic(t, func() { New(nil, repo.NewPG(), Config{}) })
}
