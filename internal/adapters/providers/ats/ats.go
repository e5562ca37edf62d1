// Package ats adapts an ATS aggregator feed. Titles go out as quoted,
// pipe separated phrases, which the api reads as OR.
package ats

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
const Name = "ats"

// Defaults for PROVIDER_ATS_*
var Defaults = providers.Options{
	BaseURL:  "https://active-jobs-db.p.rapidapi.com",
	RPS:      1,
	Burst:    1,
	Retries:  3,
	Timeout:  20 * time.Second,
	PageSize: 100,
	MaxPages: 2,
}

type posting struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Organization     string   `json:"organization"`
	LocationsDerived []string `json:"locations_derived"`
	DescriptionText  string   `json:"description_text"`
	URL              string   `json:"url"`
	DatePosted       string   `json:"date_posted"`
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
			Header:     http.Header{"Authorization": {"Bearer " + opts.APIKey}},
		}),
		opts: opts,
	}
}

// Name implements providers.Adapter
func (a *Adapter) Name() string { return Name }

// Metered implements providers.Adapter
func (a *Adapter) Metered() bool { return true }

// Search implements providers.Adapter
func (a *Adapter) Search(ctx context.Context, c combo.Combination, w providers.Window) ([]job.Record, error) {
	return providers.Paginate(ctx, a.opts.MaxPages, a.opts.PageSize, func(ctx context.Context, page int) ([]job.Record, error) {
		var body []posting
		if err := a.cl.GetJSON(ctx, "/jobs", params(c, w, page, a.opts.PageSize), &body); err != nil {
			return nil, err
		}
		out := make([]job.Record, 0, len(body))
		for _, p := range body {
			out = append(out, p.record())
		}
		return out, nil
	})
}

func params(c combo.Combination, w providers.Window, page, size int) url.Values {
	q := url.Values{}
	title := c.Title
	if c.Seniority != "" {
		title = c.Seniority + " " + title
	}
	q.Set("title_filter", TitleFilter(title))
	if !c.AnyLocation() && c.Location != "" {
		q.Set("location_filter", TitleFilter(c.Location))
	}
	q.Set("posted_within_days", strconv.Itoa(w.Days()))
	if size > 0 {
		q.Set("limit", strconv.Itoa(size))
		q.Set("offset", strconv.Itoa((page-1)*size))
	}
	if strings.EqualFold(c.WorkArrangement, "remote") {
		q.Set("remote", "true")
	}
	return q
}

// TitleFilter quotes each phrase and joins them with '|'; embedded quotes are dropped
func TitleFilter(phrases ...string) string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.Join(strings.Fields(strings.ReplaceAll(p, `"`, "")), " ")
		if p != "" {
			out = append(out, `"`+p+`"`)
		}
	}
	return strings.Join(out, "|")
}

func (p posting) record() job.Record {
	r := job.Record{
		ExternalID:  p.ID,
		Provider:    Name,
		Title:       p.Title,
		Company:     p.Organization,
		Description: p.DescriptionText,
		URL:         p.URL,
	}
	if len(p.LocationsDerived) > 0 {
		r.Location = p.LocationsDerived[0]
	}
	if t, err := time.Parse(time.RFC3339, p.DatePosted); err == nil {
		t = t.UTC()
		r.PostedDate = &t
	} else if t, err := time.Parse("2006-01-02T15:04:05", p.DatePosted); err == nil {
		r.PostedDate = &t
	}
	return r
}
