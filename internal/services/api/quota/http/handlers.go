// Package http provides the quota endpoint
package http

import (
	"net/http"

	phttp "jobacq/internal/platform/net/http"
	quotadom "jobacq/internal/services/quota/domain"
)

// Register mounts the quota routes
func Register(r phttp.Router, q quotadom.ServicePort) {
	phttp.GetJSON(r, "/", func(r *http.Request) (any, error) {
		return q.CheckBudget(r.Context())
	})
}
