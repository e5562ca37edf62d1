// Package module provides the backfill module implementation
package module

import (
	"jobacq/internal/adapters/providers"
	"jobacq/internal/adapters/providers/all"
	"jobacq/internal/modkit"
	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/services/backfill/domain"
	"jobacq/internal/services/backfill/guardrails"
	"jobacq/internal/services/backfill/repo"
	"jobacq/internal/services/backfill/service"
)

// Ports defines the backfill module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the backfill module
type Module struct {
	name     string
	ports    Ports
	adapters []providers.Adapter
}

// New constructs the backfill module. The prefs, ledger, dedup and quota ports
// come in through modkit.WithPorts(service.Ports{...}); providers, timeouts and
// claims are read from deps.Cfg. It does not mount any routes.
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions is New with the CORE_BACKFILL_ options already resolved, for
// callers that override them from flags
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("backfill")}, opts...)...)
	ports, ok := b.Ports.(service.Ports)
	if !ok {
		return nil, perr.Internalf("backfill module needs service.Ports, got %T", b.Ports)
	}

	adapters, err := all.FromConfig(deps.Cfg, o.Providers)
	if err != nil {
		return nil, err
	}

	// statement_timeout backs up the context deadline when the pool ignores it
	db := repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(o.DBTimeout))

	svc := service.New(
		db, repo.NewPG(),
		adapters,
		ports,
		guardrails.RedisClaims(deps.RDS, o.ClaimTTL),
		repo.NewEvents(deps.CH),
		service.Config{
			Workers: o.Workers,
			Timeouts: guardrails.Timeouts{
				Dispatch: o.DispatchTimeout,
				DB:       o.DBTimeout,
			},
		},
	)
	return &Module{name: b.Name, ports: Ports{Runner: svc}, adapters: adapters}, nil
}

// Providers lists the adapter names this module dispatches to
func (m *Module) Providers() []string {
	out := make([]string, 0, len(m.adapters))
	for _, a := range m.adapters {
		out = append(out, a.Name())
	}
	return out
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as backfill has no routes
func (m *Module) MountRoutes(phttp.Router) {}
