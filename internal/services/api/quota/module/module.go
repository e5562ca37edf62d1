// Package module wires the quota endpoint into the API
package module

import (
	"net/http"

	"jobacq/internal/modkit"
	perr "jobacq/internal/platform/errors"
	phttp "jobacq/internal/platform/net/http"
	quotadom "jobacq/internal/services/quota/domain"

	quotahttp "jobacq/internal/services/api/quota/http"
)

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	quota  quotadom.ServicePort
}

// New constructs the quota api module; the projector comes in through modkit.WithPorts
func New(_ modkit.Deps, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("quota-api"),
		modkit.WithPrefix("/quota"),
	}, opts...)...)

	q, ok := b.Ports.(quotadom.ServicePort)
	if !ok {
		return nil, perr.Internalf("quota api module needs a quota port, got %T", b.Ports)
	}
	return &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, quota: q}, nil
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(m.prefix, func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		quotahttp.Register(rr, m.quota)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
