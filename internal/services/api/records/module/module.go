// Package module wires the record read endpoints into the API
package module

import (
	"net/http"

	"jobacq/internal/modkit"
	perr "jobacq/internal/platform/errors"
	phttp "jobacq/internal/platform/net/http"

	recordshttp "jobacq/internal/services/api/records/http"
)

// Ports are the services the record endpoints read from
type Ports = recordshttp.Deps

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   recordshttp.Deps
}

// New constructs the records api module; readers come in through modkit.WithPorts
func New(_ modkit.Deps, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("records-api"),
		modkit.WithPrefix("/records"),
	}, opts...)...)

	p, ok := b.Ports.(Ports)
	if !ok || p.Jobs == nil || p.Ledger == nil {
		return nil, perr.Internalf("records api module needs job and ledger readers, got %T", b.Ports)
	}
	return &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, deps: p}, nil
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(m.prefix, func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		recordshttp.Register(rr, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
