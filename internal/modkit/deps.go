// Package modkit wires services into modules from shared dependencies
package modkit

import (
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/config"
	"jobacq/internal/platform/logger"
	"jobacq/internal/platform/store"
)

// Deps holds what every module may draw on; CH and RDS are nil when disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
	RDS store.Redis
}

// FromStore builds Deps from an opened store
func FromStore(st *store.Store, cfg config.Conf) Deps {
	return Deps{Log: st.Log, Cfg: cfg, PG: st.PG, CH: st.CH, RDS: st.RDS}
}
