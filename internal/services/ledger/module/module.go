// Package module exposes the ledger service as a module with no routes
package module

import (
	"jobacq/internal/modkit"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/services/ledger/domain"
	"jobacq/internal/services/ledger/repo"
	"jobacq/internal/services/ledger/service"
)

// Ports defines the ledger module ports
type Ports struct {
	Ledger domain.ServicePort
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New builds the ledger service on deps.PG. EMPTY_RETRY_AFTER lives in the backfill block
// and defaults to never
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("ledger")}, opts...)...)

	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		EmptyRetryAfter: deps.Cfg.Prefix("CORE_BACKFILL_").MayDuration("EMPTY_RETRY_AFTER", 0),
	})
	return &Module{name: b.Name, ports: Ports{Ledger: svc, Reader: svc}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; the ledger has no routes
func (m *Module) MountRoutes(phttp.Router) {}
