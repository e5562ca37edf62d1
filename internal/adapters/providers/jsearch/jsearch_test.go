package jsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
	"jobacq/internal/core/fingerprint"
	perr "jobacq/internal/platform/errors"
)

func serve(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts := Defaults
	opts.BaseURL = srv.URL
	opts.APIKey = "secret"
	opts.RPS = 0
	opts.Retries = -1
	opts.PageSize = 2
	opts.MaxPages = 3
	return New(opts)
}

var berlin = combo.Combination{Title: "Data Scientist", Location: "Berlin", Seniority: "Senior", EmploymentType: "Full-time", WorkArrangement: "Remote"}

func TestRecentEndpointMapping(t *testing.T) {
	a := serve(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || r.Header.Get("X-RapidAPI-Key") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("query") != "Senior Data Scientist in Berlin" || q.Get("date_posted") != "today" ||
			q.Get("employment_types") != "FULLTIME" || q.Get("remote_jobs_only") != "true" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","data":[
			{"job_id":"j1","job_title":"Senior Data Scientist","employer_name":"Acme","job_city":"Berlin","job_country":"DE",
			 "job_description":"Build models","job_apply_link":"https://acme.example/1","job_posted_at_datetime_utc":"2026-10-01T08:00:00.000Z",
			 "job_min_salary":70000,"job_max_salary":90000,"job_salary_currency":"EUR","job_salary_period":"YEAR"}
		]}`))
	})

	got, err := a.Search(context.Background(), berlin, providers.Window24h)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	r := got[0]
	if r.ExternalID != "j1" || r.Provider != Name || r.Company != "Acme" || r.Location != "Berlin, DE" || r.Description != "Build models" {
		t.Fatalf("record = %+v", r)
	}
	if r.PostedDate == nil || r.PostedDate.Day() != 1 || r.Salary == nil || *r.Salary.Max != 90000 {
		t.Fatalf("date/salary = %v %+v", r.PostedDate, r.Salary)
	}
}

func TestHistoricalEndpointMappingAndPaging(t *testing.T) {
	pages := 0
	a := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search-v2" || r.URL.Query().Get("date_posted") != "month" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		pages++
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"data":[
				{"id":"h1","title":"Data Scientist","company_name":"Acme","location":"Berlin, Germany","description":"d1"},
				{"id":"h2","title":"Data Scientist","company_name":"Beta","location":"Berlin","description":"d2"}]}`))
		default:
			_, _ = w.Write([]byte(`{"data":[{"id":"h3","title":"Data Scientist","location":"Berlin"}]}`))
		}
	})

	got, err := a.Search(context.Background(), combo.Combination{Title: "Data Scientist", Location: "Berlin"}, providers.Window30d)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || pages != 2 {
		t.Fatalf("records = %d pages = %d", len(got), pages)
	}
	if got[0].Company != "Acme" || got[0].Location != "Berlin, Germany" || got[0].Description != "d1" {
		t.Fatalf("record = %+v", got[0])
	}
	if got[2].Company != "" {
		t.Fatal("unmapped company must stay empty")
	}
}

func TestQueryAnyLocation(t *testing.T) {
	if q := query(combo.Combination{Title: "Go Dev", Location: combo.AnyLocation, Industry: "Fintech"}); q != "Go Dev Fintech" {
		t.Fatalf("query = %q", q)
	}
}

func TestErrorsKeepClass(t *testing.T) {
	a := serve(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) })
	_, err := a.Search(context.Background(), berlin, providers.Window24h)
	if !perr.IsCode(err, perr.ErrorCodeForbidden) || providers.Classify(err) != providers.ClassPermanent {
		t.Fatalf("err = %v", err)
	}
	if !a.Metered() || a.Name() != "jsearch" {
		t.Fatal("identity mismatch")
	}
}

func TestRecentLocationMatchesOtherEndpoints(t *testing.T) {
	a := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			_, _ = w.Write([]byte(`{"status":"OK","data":[
				{"job_id":"j1","job_title":"Data Scientist","employer_name":"Acme","job_city":"Berlin",
				 "job_state":"Berlin","job_country":"DE","job_description":"Build models"}]}`))
		case "/search-v2":
			_, _ = w.Write([]byte(`{"data":[
				{"id":"h1","title":"Data Scientist","company_name":"Acme","location":"Berlin, Germany","description":"Build models"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	recent, err := a.Search(context.Background(), berlin, providers.Window24h)
	if err != nil || len(recent) != 1 {
		t.Fatalf("recent = %v, %v", recent, err)
	}
	hist, err := a.Search(context.Background(), berlin, providers.Window30d)
	if err != nil || len(hist) != 1 {
		t.Fatalf("historical = %v, %v", hist, err)
	}

	if recent[0].Location != "Berlin, DE" {
		t.Fatalf("recent location = %q", recent[0].Location)
	}
	fp := func(loc string) string { return fingerprint.Compute("Data Scientist", "Acme", loc, "Build models") }
	if fp(recent[0].Location) != fp(hist[0].Location) || fp(recent[0].Location) != fp("Berlin, Germany") {
		t.Fatalf("fingerprints differ: %q vs %q", recent[0].Location, hist[0].Location)
	}
}
