// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"sort"
	"time"

	"jobacq/internal/core/version"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/platform/store"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Providers   []string

	// Checks are pinged by /ready; a nil entry is reported as skipped
	Checks map[string]store.Pinger

	now func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r phttp.Router, d Deps) {
	if d.now == nil {
		d.now = time.Now
	}
	h := &handlers{deps: d}

	phttp.GetJSON(r, "/ready", h.ready)
	phttp.GetJSON(r, "/version", h.version)
	phttp.GetJSON(r, "/service", h.service)
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name      string   `json:"name"`
	Started   string   `json:"started"`
	Uptime    int64    `json:"uptime"`
	Providers []string `json:"providers"`
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.deps.Checks))
	for n := range h.deps.Checks {
		names = append(names, n)
	}
	sort.Strings(names)

	overall := "ok"
	checks := make([]ReadyCheck, 0, len(names))
	for _, n := range names {
		c := ReadyCheck{Name: n, Status: "skipped"}
		if p := h.deps.Checks[n]; p != nil {
			c.Status = "ok"
			if err := p.Ping(ctx); err != nil {
				c.Status, c.Error = "fail", err.Error()
			}
		}
		switch {
		case c.Status == "fail" && n == "pg":
			overall = "fail"
		case c.Status == "fail" && overall == "ok":
			overall = "degraded"
		}
		checks = append(checks, c)
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    h.deps.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:      h.deps.ServiceName,
		Started:   h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:    int64(h.deps.now().Sub(h.deps.StartedAt) / time.Second),
		Providers: h.deps.Providers,
	}, nil
}
