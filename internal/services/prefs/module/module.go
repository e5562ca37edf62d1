// Package module exposes the prefs service as a module with no routes
package module

import (
	"jobacq/internal/modkit"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/services/prefs/domain"
	"jobacq/internal/services/prefs/repo"
	"jobacq/internal/services/prefs/service"
)

// Ports defines the prefs module ports
type Ports struct {
	Prefs      domain.ServicePort
	Candidates domain.CandidatesPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New builds the prefs service on deps.PG
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("prefs")}, opts...)...)
	svc := service.New(deps.PG, repo.NewPG())
	return &Module{name: b.Name, ports: Ports{Prefs: svc, Candidates: svc}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; preferences are served by the users api module
func (m *Module) MountRoutes(phttp.Router) {}
