// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	"jobacq/internal/modkit"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/platform/store"

	metahttp "jobacq/internal/services/api/meta/http"
)

// Ports are what the meta module reads from the rest of the api
type Ports struct {
	Providers []string
}

// Module implements the modkit.Module interface
type Module struct {
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	register func(phttp.Router)
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	ports, _ := b.Ports.(Ports)
	checks := map[string]store.Pinger{"pg": pinger(deps.PG), "ch": nil, "redis": nil}
	if deps.CH != nil {
		checks["ch"] = deps.CH
	}
	if deps.RDS != nil {
		checks["redis"] = deps.RDS
	}

	d := metahttp.Deps{
		ServiceName: "jobacq-api",
		StartedAt:   time.Now(),
		Providers:   ports.Providers,
		Checks:      checks,
	}
	return &Module{
		name:     b.Name,
		prefix:   b.Prefix,
		mws:      b.Mw,
		register: func(r phttp.Router) { metahttp.Register(r, d) },
	}
}

// pg is a TxRunner; it pings only when the concrete store exposes Ping
func pinger(v any) store.Pinger {
	if p, ok := v.(store.Pinger); ok {
		return p
	}
	return nil
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(m.prefix, func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
