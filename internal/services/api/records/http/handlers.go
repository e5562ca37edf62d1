// Package http provides read endpoints over stored postings and ledger rows
package http

import (
	"net/http"
	"strings"
	"time"

	"jobacq/internal/core/combo"
	perr "jobacq/internal/platform/errors"
	phttp "jobacq/internal/platform/net/http"
	dedupdom "jobacq/internal/services/dedup/domain"
	ledgerdom "jobacq/internal/services/ledger/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Jobs   dedupdom.ReaderPort
	Ledger ledgerdom.ReaderPort
}

type handlers struct {
	deps Deps
}

// Register mounts the record routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}

	phttp.GetJSON(r, "/jobs/{fingerprint}", h.job)
	phttp.GetJSON(r, "/ledger/{provider}", h.ledger)
}

func (h *handlers) job(r *http.Request) (any, error) {
	fp := strings.ToLower(strings.TrimSpace(phttp.Param(r, "fingerprint")))
	if len(fp) != 64 {
		return nil, perr.WithField(perr.InvalidArgf("fingerprint must be 64 hex characters"), "fingerprint")
	}
	return h.deps.Jobs.Lookup(r.Context(), fp)
}

// LedgerEntry is the wire form of one ledger row
type LedgerEntry struct {
	Combination   combo.Combination `json:"combination"`
	Provider      string            `json:"provider"`
	FetchedAt     time.Time         `json:"fetched_at"`
	PostingsFound int               `json:"postings_found"`
	Outcome       ledgerdom.Outcome `json:"outcome"`
}

// ledger reads the row for the combination named by the query string;
// a missing location means the any-location combination
func (h *handlers) ledger(r *http.Request) (any, error) {
	q := r.URL.Query()
	c := combo.Combination{
		Title:           q.Get("title"),
		Location:        q.Get("location"),
		WorkArrangement: q.Get("work_arrangement"),
		EmploymentType:  q.Get("employment_type"),
		Seniority:       q.Get("seniority"),
		Industry:        q.Get("industry"),
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, perr.WithField(perr.InvalidArgf("title is required"), "title")
	}
	if strings.TrimSpace(c.Location) == "" {
		c.Location = combo.AnyLocation
	}

	provider := phttp.Param(r, "provider")
	e, err := h.deps.Ledger.Entry(r.Context(), c, provider)
	if err != nil {
		return nil, err
	}
	return LedgerEntry{
		Combination:   c,
		Provider:      e.Provider,
		FetchedAt:     e.FetchedAt,
		PostingsFound: e.PostingsFound,
		Outcome:       e.Outcome,
	}, nil
}
