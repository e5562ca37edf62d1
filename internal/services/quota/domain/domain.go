// Package domain holds quota metering types and ports
package domain

import (
	"context"
	"fmt"
	"time"
)

// Status is the budget verdict
type Status string

const (
	// StatusOK means the projection is under the warning threshold
	StatusOK Status = "ok"

	// StatusWarning means the month end projection crosses the warning threshold
	StatusWarning Status = "warning"

	// StatusExceeded means consumption is already past the budget
	StatusExceeded Status = "exceeded"
)

// Projection extrapolates the current consumption rate to the end of the period
type Projection struct {
	Meter          string    `json:"meter"`
	PeriodStart    time.Time `json:"period_start"`
	Consumed       int64     `json:"consumed"`
	Budget         int64     `json:"budget"`
	DaysElapsed    int       `json:"days_elapsed"`
	DaysInPeriod   int       `json:"days_in_period"`
	ProjectedTotal float64   `json:"projected_total"`
	UtilizationPct float64   `json:"utilization_pct"`
}

// Check is a budget verdict with the numbers behind it
type Check struct {
	Status     Status     `json:"status"`
	Projection Projection `json:"projection"`
}

// Exceeded reports whether dispatches to metered providers must stop
func (c Check) Exceeded() bool { return c.Status == StatusExceeded }

// String is the one line operator summary
func (c Check) String() string {
	p := c.Projection
	return fmt.Sprintf("quota %s %s: consumed %d/%d, day %d/%d, projected %.0f (%.1f%%) status %s",
		p.Meter, p.PeriodStart.Format("2006-01"), p.Consumed, p.Budget,
		p.DaysElapsed, p.DaysInPeriod, p.ProjectedTotal, p.UtilizationPct, c.Status)
}

// ServicePort is what the backfill runner and the api need from quota
type ServicePort interface {
	RecordUsage(ctx context.Context, units int) (int64, error)
	ProjectMonthly(ctx context.Context) (Projection, error)
	CheckBudget(ctx context.Context) (Check, error)
}
