package module

import (
	"time"

	"jobacq/internal/platform/config"
)

// Options holds configuration options for the backfill service
type Options struct {
	Workers         int
	DispatchTimeout time.Duration
	DBTimeout       time.Duration
	ClaimTTL        time.Duration

	// Providers narrows the enabled providers; empty means every enabled one
	Providers []string
}

// FromConfig reads the backfill options from config with CORE_BACKFILL_ prefix
func FromConfig(cfg config.Conf) Options {
	bf := cfg.Prefix("CORE_BACKFILL_")
	return Options{
		Workers:         bf.MayInt("WORKERS", 4),
		DispatchTimeout: bf.MayDuration("DISPATCH_TIMEOUT", 2*time.Minute),
		DBTimeout:       bf.MayDuration("DB_TIMEOUT", 15*time.Second),
		ClaimTTL:        bf.MayDuration("CLAIM_TTL", 5*time.Minute),
		Providers:       bf.MayCSV("PROVIDERS", nil),
	}
}
