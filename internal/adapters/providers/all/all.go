// Package all builds the configured provider adapters
package all

import (
	"strings"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/adapters/providers/ats"
	"jobacq/internal/adapters/providers/govboard"
	"jobacq/internal/adapters/providers/jsearch"
	"jobacq/internal/platform/config"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
)

type entry struct {
	name   string
	prefix string
	def    providers.Options
	build  func(providers.Options) providers.Adapter
}

var known = []entry{
	{jsearch.Name, "PROVIDER_JSEARCH_", jsearch.Defaults, func(o providers.Options) providers.Adapter { return jsearch.New(o) }},
	{govboard.Name, "PROVIDER_GOVBOARD_", govboard.Defaults, func(o providers.Options) providers.Adapter { return govboard.New(o) }},
	{ats.Name, "PROVIDER_ATS_", ats.Defaults, func(o providers.Options) providers.Adapter { return ats.New(o) }},
}

// Names lists every provider this build knows
func Names() []string {
	out := make([]string, 0, len(known))
	for _, e := range known {
		out = append(out, e.name)
	}
	return out
}

// FromConfig builds enabled adapters. only, when non-empty, narrows the set and
// must name known providers. Metered providers without an api key are skipped.
func FromConfig(root config.Conf, only []string) ([]providers.Adapter, error) {
	want := map[string]bool{}
	for _, n := range only {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if !isKnown(n) {
			return nil, perr.InvalidArgf("unknown provider %q", n)
		}
		want[n] = true
	}

	log := logger.Named("providers")
	var out []providers.Adapter
	for _, e := range known {
		if len(want) > 0 && !want[e.name] {
			continue
		}
		def := e.def
		def.Enabled = true
		o := providers.OptionsFrom(root.Prefix(e.prefix), def)
		if !o.Enabled {
			continue
		}
		a := e.build(o)
		if a.Metered() && o.APIKey == "" {
			log.Warn().Str("provider", e.name).Msg("metered provider has no api key; skipped")
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil, perr.InvalidArgf("no providers enabled")
	}
	return out, nil
}

func isKnown(n string) bool {
	for _, e := range known {
		if e.name == n {
			return true
		}
	}
	return false
}
