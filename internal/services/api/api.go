// Package api provides the HTTP API for the application
package api

import (
	"time"

	"jobacq/internal/modkit"
	"jobacq/internal/modkit/module"
	"jobacq/internal/platform/config"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/platform/net/middleware"
	"jobacq/internal/services/acquisition"
	backfillmod "jobacq/internal/services/backfill/module"
	dedupmod "jobacq/internal/services/dedup/module"
	ledgermod "jobacq/internal/services/ledger/module"
	prefsmod "jobacq/internal/services/prefs/module"
	quotamod "jobacq/internal/services/quota/module"

	metamod "jobacq/internal/services/api/meta/module"
	quotaapi "jobacq/internal/services/api/quota/module"
	recordsmod "jobacq/internal/services/api/records/module"
	usersmod "jobacq/internal/services/api/users/module"
)

// Options are the API options
type Options struct {
	// Config is the CORE_API_ block
	Config config.Conf
	Deps   modkit.Deps
}

// Mount builds the service modules and mounts the api modules under /api/v1
func Mount(r phttp.Router, opt Options) error {
	set, err := acquisition.Build(opt.Deps, backfillmod.FromConfig(opt.Deps.Cfg))
	if err != nil {
		return err
	}

	users, err := usersmod.New(opt.Deps, modkit.WithPorts(usersmod.Ports{
		Prefs:  module.MustPortsOf[prefsmod.Ports](set.Prefs).Prefs,
		Runner: set.Runner(),
	}))
	if err != nil {
		return err
	}
	quota, err := quotaapi.New(opt.Deps, modkit.WithPorts(module.MustPortsOf[quotamod.Ports](set.Quota).Quota))
	if err != nil {
		return err
	}

	records, err := recordsmod.New(opt.Deps, modkit.WithPorts(recordsmod.Ports{
		Jobs:   module.MustPortsOf[dedupmod.Ports](set.Dedup).Reader,
		Ledger: module.MustPortsOf[ledgermod.Ports](set.Ledger).Reader,
	}))
	if err != nil {
		return err
	}

	mods := []module.Module{
		metamod.New(opt.Deps, modkit.WithPorts(metamod.Ports{Providers: set.Backfill.Providers()})),
		users,
		quota,
		records,
	}

	// middleware goes on the root before any route; chi refuses it later
	for _, mw := range middleware.Stack(middleware.StackOptions{
		CORS:    middleware.CORSOptions{AllowedOrigins: opt.Config.MayCSV("CORS_ORIGINS", nil)},
		Timeout: opt.Config.MayDuration("TIMEOUT", 5*time.Minute),
		Slow:    opt.Config.MayDuration("SLOW", 2*time.Second),
	}) {
		r.Use(mw)
	}

	r.Route("/api/v1", func(api phttp.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return nil
}
