package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobacq/internal/core/combo"
	"jobacq/internal/core/job"
	perr "jobacq/internal/platform/errors"
	phttp "jobacq/internal/platform/net/http"
	ledgerdom "jobacq/internal/services/ledger/domain"

	"github.com/go-chi/chi/v5"
)

type fakeJobs map[string]job.Record

func (f fakeJobs) Lookup(_ context.Context, fp string) (job.Record, error) {
	if r, ok := f[fp]; ok {
		return r, nil
	}
	return job.Record{}, perr.ErrNotFound
}

type fakeLedger struct {
	gotCombo    combo.Combination
	gotProvider string
	rows        map[combo.Key]ledgerdom.Entry
}

func (f *fakeLedger) Entry(_ context.Context, c combo.Combination, provider string) (ledgerdom.Entry, error) {
	f.gotCombo, f.gotProvider = c, provider
	if e, ok := f.rows[c.Key()]; ok && e.Provider == provider {
		return e, nil
	}
	return ledgerdom.Entry{}, perr.ErrNotFound
}

func get(t *testing.T, d Deps, path string) (int, phttp.Envelope) {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))

	var env phttp.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env
}

func TestJobByFingerprint(t *testing.T) {
	fp := strings.Repeat("ab", 32)
	d := Deps{Jobs: fakeJobs{fp: {ExternalID: "j1", Provider: "jsearch", Title: "Go Developer"}}, Ledger: &fakeLedger{}}

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/jobs/" + fp, stdhttp.StatusOK},
		{"upper case folds", "/jobs/" + strings.ToUpper(fp), stdhttp.StatusOK},
		{"unknown", "/jobs/" + strings.Repeat("0", 64), stdhttp.StatusNotFound},
		{"malformed", "/jobs/abc", stdhttp.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := get(t, d, tc.path)
			if code != tc.status {
				t.Fatalf("status = %d, want %d (%+v)", code, tc.status, env)
			}
			if code == stdhttp.StatusOK && env.Data.(map[string]any)["external_id"] != "j1" {
				t.Fatalf("data = %+v", env.Data)
			}
		})
	}
}

func TestLedgerEntry(t *testing.T) {
	at := time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)
	c := combo.Combination{Title: "Go Developer", Location: combo.AnyLocation, Seniority: "Senior"}
	l := &fakeLedger{rows: map[combo.Key]ledgerdom.Entry{
		c.Key(): {Key: c.Key(), Provider: "govboard", FetchedAt: at, PostingsFound: 4, Outcome: ledgerdom.OutcomeOK},
	}}
	d := Deps{Jobs: fakeJobs{}, Ledger: l}

	code, env := get(t, d, "/ledger/govboard?title=go+developer&seniority=SENIOR")
	if code != stdhttp.StatusOK {
		t.Fatalf("status = %d (%+v)", code, env)
	}
	if l.gotCombo.Location != combo.AnyLocation || l.gotProvider != "govboard" {
		t.Fatalf("asked for %+v at %q", l.gotCombo, l.gotProvider)
	}
	raw, _ := json.Marshal(env.Data)
	var got LedgerEntry
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.PostingsFound != 4 || got.Outcome != ledgerdom.OutcomeOK || !got.FetchedAt.Equal(at) {
		t.Fatalf("entry = %+v", got)
	}

	if code, _ := get(t, d, "/ledger/jsearch?title=go+developer&seniority=senior"); code != stdhttp.StatusNotFound {
		t.Fatalf("other provider status = %d", code)
	}
	if code, env := get(t, d, "/ledger/govboard?location=Berlin"); code != stdhttp.StatusUnprocessableEntity || env.Field != "title" {
		t.Fatalf("missing title = %d %+v", code, env)
	}
}
