package govboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
)

func TestSearchMapsOffers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/pc/v4/jobs" || r.Header.Get("X-API-Key") != "jobboerse-jobsuche" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if q.Get("was") != "Data Scientist" || q.Get("wo") != "Berlin" || q.Get("veroeffentlichtseit") != "30" || q.Get("arbeitszeit") != "vz;ho" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"maxErgebnisse":2,"stellenangebote":[
			{"refnr":"10000-1","titel":"Data Scientist (m/w/d)","beruf":"Data Scientist","arbeitgeber":"Stadtwerke",
			 "arbeitsort":{"ort":"Berlin","region":"Berlin","land":"Deutschland"},"aktuelleVeroeffentlichungsdatum":"2026-10-02"},
			{"refnr":"10000-2","titel":"Data Scientist","arbeitsort":{"ort":"Berlin"},"externeUrl":"https://ext.example/2"}
		]}`))
	}))
	defer srv.Close()

	opts := Defaults
	opts.BaseURL = srv.URL
	opts.RPS = 0
	opts.Retries = -1
	a := New(opts)

	c := combo.Combination{Title: "Data Scientist", Location: "Berlin", EmploymentType: "full time", WorkArrangement: "remote"}
	got, err := a.Search(context.Background(), c, providers.Window30d)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	first := got[0]
	if first.Company != "Stadtwerke" || first.Location != "Berlin, Deutschland" || first.URL != detailURL+"10000-1" || first.PostedDate == nil {
		t.Fatalf("first = %+v", first)
	}
	if got[1].Company != "" || got[1].URL != "https://ext.example/2" || got[1].Location != "Berlin" {
		t.Fatalf("second = %+v", got[1])
	}
	if a.Metered() {
		t.Fatal("govboard is unmetered")
	}
}

func TestParamsAnyLocation(t *testing.T) {
	q := params(combo.Combination{Title: "Go Dev", Location: combo.AnyLocation, Seniority: "Senior"}, providers.Window24h, 2, 25)
	if q.Has("wo") || q.Get("was") != "Senior Go Dev" || q.Get("veroeffentlichtseit") != "1" || q.Get("page") != "2" || q.Has("arbeitszeit") {
		t.Fatalf("params = %v", q)
	}
}
