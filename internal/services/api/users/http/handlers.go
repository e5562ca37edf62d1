// Package http provides the user preference endpoints
package http

import (
	"net/http"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
	phttp "jobacq/internal/platform/net/http"
	backfilldom "jobacq/internal/services/backfill/domain"
	prefsdom "jobacq/internal/services/prefs/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Prefs  prefsdom.ServicePort
	Runner backfilldom.RunnerPort

	// Window is the posting window of the on-demand backfill
	Window providers.Window
}

type handlers struct {
	deps Deps
}

// Register mounts the user routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}

	phttp.PutJSON(r, "/{userID}/preferences", h.putPreferences)
	phttp.GetJSON(r, "/{userID}/searches", h.searches)
}

// PreferencesResponse is the result of a preferences update
type PreferencesResponse struct {
	Searches prefsdom.SetResult  `json:"searches"`
	Backfill *backfilldom.Result `json:"backfill,omitempty"`
}

// putPreferences stores the document, then backfills the user's combinations
// before answering. A failed backfill leaves the preferences stored
func (h *handlers) putPreferences(r *http.Request, in combo.Preferences) (any, error) {
	ctx := r.Context()
	userID := phttp.Param(r, "userID")

	set, err := h.deps.Prefs.Set(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	resp := PreferencesResponse{Searches: set}
	if h.deps.Runner == nil {
		return resp, nil
	}

	res, err := h.deps.Runner.RunForUser(ctx, userID, h.deps.Window)
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("user_id", userID).Msg("users: on-demand backfill failed")
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "preferences saved; backfill failed")
	}
	resp.Backfill = &res
	return resp, nil
}

// SearchesResponse lists live search rows
type SearchesResponse struct {
	UserID   string               `json:"user_id"`
	Searches []prefsdom.SearchRow `json:"searches"`
}

func (h *handlers) searches(r *http.Request) (any, error) {
	userID := phttp.Param(r, "userID")
	rows, err := h.deps.Prefs.ForUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []prefsdom.SearchRow{}
	}
	return SearchesResponse{UserID: userID, Searches: rows}, nil
}
