// Package module holds the module contract and a bootstrap port registry
package module

import phttp "jobacq/internal/platform/net/http"

// Module mounts routes and exposes its ports for cross wiring
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
