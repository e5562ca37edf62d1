// Package acquisition assembles the service modules both binaries share and
// registers their ports
package acquisition

import (
	"jobacq/internal/modkit"
	"jobacq/internal/modkit/module"

	backfilldom "jobacq/internal/services/backfill/domain"
	backfillmod "jobacq/internal/services/backfill/module"
	backfillsvc "jobacq/internal/services/backfill/service"
	dedupmod "jobacq/internal/services/dedup/module"
	ledgermod "jobacq/internal/services/ledger/module"
	prefsmod "jobacq/internal/services/prefs/module"
	quotamod "jobacq/internal/services/quota/module"
)

// Set holds the constructed service modules
type Set struct {
	Prefs    *prefsmod.Module
	Ledger   *ledgermod.Module
	Dedup    *dedupmod.Module
	Quota    *quotamod.Module
	Backfill *backfillmod.Module
}

// Build constructs every service module on deps. bf carries the backfill
// options, usually backfillmod.FromConfig(deps.Cfg) with flag overrides
func Build(deps modkit.Deps, bf backfillmod.Options) (*Set, error) {
	s := &Set{
		Prefs:  prefsmod.New(deps),
		Ledger: ledgermod.New(deps),
		Dedup:  dedupmod.New(deps),
		Quota:  quotamod.New(deps),
	}

	// the runner drives the other four through their ports
	bfm, err := backfillmod.NewWithOptions(deps, bf, modkit.WithPorts(backfillsvc.Ports{
		Candidates: module.MustPortsOf[prefsmod.Ports](s.Prefs).Candidates,
		Ledger:     module.MustPortsOf[ledgermod.Ports](s.Ledger).Ledger,
		Dedup:      module.MustPortsOf[dedupmod.Ports](s.Dedup).Dedup,
		Quota:      module.MustPortsOf[quotamod.Ports](s.Quota).Quota,
	}))
	if err != nil {
		return nil, err
	}
	s.Backfill = bfm

	for _, m := range s.Modules() {
		module.Register(m.Name(), m.Ports())
	}
	return s, nil
}

// Modules lists the set in dependency order
func (s *Set) Modules() []module.Module {
	return []module.Module{s.Prefs, s.Ledger, s.Dedup, s.Quota, s.Backfill}
}

// Runner is the backfill runner port
func (s *Set) Runner() backfilldom.RunnerPort {
	return module.MustPortsOf[backfillmod.Ports](s.Backfill).Runner
}
