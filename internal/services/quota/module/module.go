// Package module exposes the quota projector as a module with no routes
package module

import (
	"jobacq/internal/modkit"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/services/quota/domain"
	"jobacq/internal/services/quota/repo"
	"jobacq/internal/services/quota/service"
)

// Ports defines the quota module ports
type Ports struct {
	Quota domain.ServicePort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// Options holds the CORE_QUOTA_ settings
type Options struct {
	Meter  string
	Budget int64
	WarnAt float64
}

// FromConfig reads CORE_QUOTA_ settings; the default budget is the usual
// 10k requests a month of a paid search plan
func FromConfig(deps modkit.Deps) Options {
	c := deps.Cfg.Prefix("CORE_QUOTA_")
	return Options{
		Meter:  c.MayString("METER", "default"),
		Budget: c.MayInt64("BUDGET", 10000),
		WarnAt: c.MayFloat64("WARN_AT", 0.9),
	}
}

// New builds the projector on deps.PG
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("quota")}, opts...)...)
	o := FromConfig(deps)
	svc := service.New(deps.PG, repo.NewPG(), service.Config{Meter: o.Meter, Budget: o.Budget, WarnAt: o.WarnAt})
	return &Module{name: b.Name, ports: Ports{Quota: svc}}
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; quota is served by the api modules
func (m *Module) MountRoutes(phttp.Router) {}
