// Package service meters metered provider calls against a monthly budget
package service

import (
	"context"
	"strings"
	"time"

	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
	"jobacq/internal/services/quota/domain"
	"jobacq/internal/services/quota/repo"
)

// Config tunes the projector
type Config struct {
	// Meter names the counter; one meter spans every metered provider
	Meter string

	// Budget is the unit allowance per calendar month
	Budget int64

	// WarnAt is the projected utilization fraction that raises a warning
	WarnAt float64
}

// Projector implements domain.ServicePort. Periods are UTC calendar months.
type Projector struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Repo]
	Cfg    Config

	now func() time.Time
}

// New constructs the projector
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config) *Projector {
	if db == nil {
		panic("quota.Projector requires a non nil TxRunner")
	}
	if binder == nil {
		panic("quota.Projector requires a non nil Repo binder")
	}
	if strings.TrimSpace(cfg.Meter) == "" {
		cfg.Meter = "default"
	}
	if cfg.WarnAt <= 0 {
		cfg.WarnAt = 0.9
	}
	return &Projector{DB: db, Binder: binder, Cfg: cfg, now: time.Now}
}

var _ domain.ServicePort = (*Projector)(nil)

// PeriodStart returns the first instant of t's UTC month
func PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the month starting at start
func DaysIn(start time.Time) int {
	return start.AddDate(0, 1, 0).Add(-time.Nanosecond).Day()
}

// RecordUsage adds units to the current period and returns the period total.
// The increment happens in the database so concurrent recorders never lose units.
func (p *Projector) RecordUsage(ctx context.Context, units int) (int64, error) {
	if units < 0 {
		return 0, perr.InvalidArgf("units must not be negative, got %d", units)
	}
	start := PeriodStart(p.now())
	if units == 0 {
		return p.consumed(ctx, start)
	}
	total, err := p.Binder.Bind(p.DB).Add(ctx, p.Cfg.Meter, start, p.Cfg.Budget, int64(units))
	if err != nil {
		return 0, perr.FromPostgresf(err, "quota: record %d units", units)
	}
	logger.C(ctx).Debug().Str("meter", p.Cfg.Meter).Int("units", units).Int64("consumed", total).Msg("quota: usage recorded")
	return total, nil
}

// ProjectMonthly extrapolates consumption so far to the end of the month
func (p *Projector) ProjectMonthly(ctx context.Context) (domain.Projection, error) {
	now := p.now().UTC()
	start := PeriodStart(now)
	consumed, err := p.consumed(ctx, start)
	if err != nil {
		return domain.Projection{}, err
	}
	return project(p.Cfg.Meter, start, now, consumed, p.Cfg.Budget), nil
}

// CheckBudget classifies the current period
func (p *Projector) CheckBudget(ctx context.Context) (domain.Check, error) {
	proj, err := p.ProjectMonthly(ctx)
	if err != nil {
		return domain.Check{}, err
	}
	return domain.Check{Status: classify(proj, p.Cfg.WarnAt), Projection: proj}, nil
}

func (p *Projector) consumed(ctx context.Context, start time.Time) (int64, error) {
	n, err := p.Binder.Bind(p.DB).Consumed(ctx, p.Cfg.Meter, start)
	if err != nil {
		return 0, perr.FromPostgres(err, "quota: read consumption")
	}
	return n, nil
}

func project(meter string, start, now time.Time, consumed, budget int64) domain.Projection {
	days := DaysIn(start)
	elapsed := min(int(now.Sub(start)/(24*time.Hour))+1, days)

	projected := float64(consumed) * float64(days) / float64(elapsed)
	var pct float64
	if budget > 0 {
		pct = projected / float64(budget) * 100
	}
	return domain.Projection{
		Meter:          meter,
		PeriodStart:    start,
		Consumed:       consumed,
		Budget:         budget,
		DaysElapsed:    elapsed,
		DaysInPeriod:   days,
		ProjectedTotal: projected,
		UtilizationPct: pct,
	}
}

// exceeded is strictly past the budget; a zero budget is a standing warning
func classify(p domain.Projection, warnAt float64) domain.Status {
	switch {
	case p.Consumed > p.Budget:
		return domain.StatusExceeded
	case p.Budget <= 0, p.UtilizationPct > warnAt*100:
		return domain.StatusWarning
	}
	return domain.StatusOK
}
