// Package govboard adapts a federal employment agency job search (jobsuche style).
// It is free to call, so the orchestrator does not meter it.
package govboard

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/adapters/providers/httpc"
	"jobacq/internal/core/combo"
	"jobacq/internal/core/job"
)

// Name is the provider label
const Name = "govboard"

// Defaults for PROVIDER_GOVBOARD_*; the api key is the public client id
var Defaults = providers.Options{
	BaseURL:  "https://rest.arbeitsagentur.de/jobboerse/jobsuche-service",
	APIKey:   "jobboerse-jobsuche",
	RPS:      5,
	Burst:    5,
	Retries:  3,
	Timeout:  15 * time.Second,
	PageSize: 50,
	MaxPages: 4,
}

const detailURL = "https://www.arbeitsagentur.de/jobsuche/jobdetail/"

type searchResponse struct {
	Offers []offer `json:"stellenangebote"`
	Total  int     `json:"maxErgebnisse"`
}

type offer struct {
	RefNr      string   `json:"refnr"`
	Title      string   `json:"titel"`
	Occupation string   `json:"beruf"`
	Employer   string   `json:"arbeitgeber"`
	Place      workSite `json:"arbeitsort"`
	Published  string   `json:"aktuelleVeroeffentlichungsdatum"`
	ExternURL  string   `json:"externeUrl"`
}

type workSite struct {
	City    string `json:"ort"`
	Region  string `json:"region"`
	Country string `json:"land"`
}

// Adapter implements providers.Adapter
type Adapter struct {
	cl   *httpc.Client
	opts providers.Options
}

// New builds the adapter
func New(opts providers.Options) *Adapter {
	return &Adapter{
		cl: httpc.New(Name, httpc.Options{
			BaseURL:    opts.BaseURL,
			Timeout:    opts.Timeout,
			RPS:        opts.RPS,
			Burst:      opts.Burst,
			MaxRetries: opts.Retries,
			Header:     http.Header{"X-Api-Key": {opts.APIKey}},
		}),
		opts: opts,
	}
}

// Name implements providers.Adapter
func (a *Adapter) Name() string { return Name }

// Metered implements providers.Adapter
func (a *Adapter) Metered() bool { return false }

// Search implements providers.Adapter
func (a *Adapter) Search(ctx context.Context, c combo.Combination, w providers.Window) ([]job.Record, error) {
	return providers.Paginate(ctx, a.opts.MaxPages, a.opts.PageSize, func(ctx context.Context, page int) ([]job.Record, error) {
		var body searchResponse
		if err := a.cl.GetJSON(ctx, "/pc/v4/jobs", params(c, w, page, a.opts.PageSize), &body); err != nil {
			return nil, err
		}
		out := make([]job.Record, 0, len(body.Offers))
		for _, o := range body.Offers {
			out = append(out, o.record())
		}
		return out, nil
	})
}

// params builds was/wo/veroeffentlichtseit plus working time filters
func params(c combo.Combination, w providers.Window, page, size int) url.Values {
	q := url.Values{}
	was := c.Title
	if c.Seniority != "" {
		was = c.Seniority + " " + was
	}
	q.Set("was", was)
	if !c.AnyLocation() && c.Location != "" {
		q.Set("wo", c.Location)
	}
	q.Set("veroeffentlichtseit", strconv.Itoa(w.Days()))
	q.Set("page", strconv.Itoa(page))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	q.Set("angebotsart", "1")
	if az := workingTime(c); az != "" {
		q.Set("arbeitszeit", az)
	}
	return q
}

// workingTime maps arrangement and employment type onto vz/tz/ho, joined by ';'
func workingTime(c combo.Combination) string {
	var codes []string
	switch strings.ToLower(strings.NewReplacer("-", "", " ", "").Replace(c.EmploymentType)) {
	case "fulltime":
		codes = append(codes, "vz")
	case "parttime":
		codes = append(codes, "tz")
	}
	if strings.EqualFold(c.WorkArrangement, "remote") {
		codes = append(codes, "ho")
	}
	return strings.Join(codes, ";")
}

func (o offer) record() job.Record {
	loc := o.Place.City
	if loc != "" && o.Place.Country != "" {
		loc += ", " + o.Place.Country
	}
	u := o.ExternURL
	if u == "" && o.RefNr != "" {
		u = detailURL + o.RefNr
	}
	r := job.Record{
		ExternalID:  o.RefNr,
		Provider:    Name,
		Title:       o.Title,
		Company:     o.Employer,
		Location:    loc,
		Description: o.Occupation,
		URL:         u,
	}
	if t, err := time.Parse("2006-01-02", o.Published); err == nil {
		r.PostedDate = &t
	}
	return r
}
