package modkit

import "jobacq/internal/modkit/module"

// Module is the surface main composes: routes, ports and a name
type Module = module.Module
