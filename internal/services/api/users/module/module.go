// Package module wires the user endpoints into the API
package module

import (
	"net/http"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/modkit"
	perr "jobacq/internal/platform/errors"
	phttp "jobacq/internal/platform/net/http"
	backfilldom "jobacq/internal/services/backfill/domain"
	prefsdom "jobacq/internal/services/prefs/domain"

	usershttp "jobacq/internal/services/api/users/http"
)

// Ports are injected from the prefs and backfill modules
type Ports struct {
	Prefs  prefsdom.ServicePort
	Runner backfilldom.RunnerPort
}

// Module implements the modkit.Module interface
type Module struct {
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	register func(phttp.Router)
}

// New constructs the users module. CORE_API_BACKFILL_WINDOW picks the
// on-demand window (default 30d)
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("users"),
		modkit.WithPrefix("/users"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Prefs == nil {
		return nil, perr.Internalf("users module needs Ports with Prefs, got %T", b.Ports)
	}
	w, err := providers.ParseWindow(deps.Cfg.Prefix("CORE_API_").MayString("BACKFILL_WINDOW", "30d"))
	if err != nil {
		return nil, err
	}

	d := usershttp.Deps{Prefs: ports.Prefs, Runner: ports.Runner, Window: w}
	return &Module{
		name:     b.Name,
		prefix:   b.Prefix,
		mws:      b.Mw,
		register: func(r phttp.Router) { usershttp.Register(r, d) },
	}, nil
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
