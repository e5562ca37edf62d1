// Package module exposes the dedup service as a module with no routes
package module

import (
	"jobacq/internal/modkit"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/services/dedup/domain"
	"jobacq/internal/services/dedup/repo"
	"jobacq/internal/services/dedup/service"
)

// Ports defines the dedup module ports
type Ports struct {
	Dedup  domain.ServicePort
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New builds the dedup service on deps.PG
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("dedup")}, opts...)...)
	svc := service.New(deps.PG, repo.NewPG())
	return &Module{name: b.Name, ports: Ports{Dedup: svc, Reader: svc}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; dedup has no routes
func (m *Module) MountRoutes(phttp.Router) {}
