// Package jsearch adapts a JSearch style aggregator. Narrow windows use the
// recent endpoint and wide windows the historical one; the two name their
// fields differently, so each has its own mapping.
package jsearch

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

// Name is the provider label stored in the ledger and jobs
const Name = "jsearch"

// Defaults for PROVIDER_JSEARCH_*
var Defaults = providers.Options{
	BaseURL:  "https://jsearch.p.rapidapi.com",
	RPS:      2,
	Burst:    2,
	Retries:  3,
	Timeout:  20 * time.Second,
	PageSize: 10,
	MaxPages: 3,
}

// endpoint is one version of the search api
type endpoint interface {
	path() string
	params(c combo.Combination, w providers.Window, page, size int) url.Values
	fetch(ctx context.Context, cl *httpc.Client, q url.Values) ([]job.Record, error)
}

// Adapter implements providers.Adapter
type Adapter struct {
	cl         *httpc.Client
	opts       providers.Options
	recent     endpoint
	historical endpoint
}

// New builds the adapter from opts
func New(opts providers.Options) *Adapter {
	host := strings.TrimPrefix(strings.TrimPrefix(opts.BaseURL, "https://"), "http://")
	return &Adapter{
		cl: httpc.New(Name, httpc.Options{
			BaseURL:    opts.BaseURL,
			Timeout:    opts.Timeout,
			RPS:        opts.RPS,
			Burst:      opts.Burst,
			MaxRetries: opts.Retries,
			Header: http.Header{
				"X-Rapidapi-Key":  {opts.APIKey},
				"X-Rapidapi-Host": {host},
			},
		}),
		opts:       opts,
		recent:     recentEndpoint{},
		historical: historicalEndpoint{},
	}
}

// Name implements providers.Adapter
func (a *Adapter) Name() string { return Name }

// Metered implements providers.Adapter
func (a *Adapter) Metered() bool { return true }

// Search implements providers.Adapter
func (a *Adapter) Search(ctx context.Context, c combo.Combination, w providers.Window) ([]job.Record, error) {
	ep := a.recent
	if w == providers.Window30d {
		ep = a.historical
	}
	return providers.Paginate(ctx, a.opts.MaxPages, a.opts.PageSize, func(ctx context.Context, page int) ([]job.Record, error) {
		return ep.fetch(ctx, a.cl, ep.params(c, w, page, a.opts.PageSize))
	})
}

// query is "<seniority> <title> <industry> in <location>"
func query(c combo.Combination) string {
	parts := []string{}
	if c.Seniority != "" {
		parts = append(parts, c.Seniority)
	}
	parts = append(parts, c.Title)
	if c.Industry != "" {
		parts = append(parts, c.Industry)
	}
	q := strings.Join(parts, " ")
	if !c.AnyLocation() && c.Location != "" {
		q += " in " + c.Location
	}
	return q
}

func commonParams(c combo.Combination, w providers.Window, page, size int) url.Values {
	q := url.Values{}
	q.Set("query", query(c))
	q.Set("page", strconv.Itoa(page))
	q.Set("num_pages", "1")
	if size > 0 {
		q.Set("page_size", strconv.Itoa(size))
	}
	if w == providers.Window24h {
		q.Set("date_posted", "today")
	} else {
		q.Set("date_posted", "month")
	}
	if et := employmentType(c.EmploymentType); et != "" {
		q.Set("employment_types", et)
	}
	if strings.EqualFold(c.WorkArrangement, "remote") {
		q.Set("remote_jobs_only", "true")
	}
	return q
}

func employmentType(s string) string {
	switch strings.ToLower(strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)) {
	case "fulltime":
		return "FULLTIME"
	case "parttime":
		return "PARTTIME"
	case "contract", "contractor", "freelance":
		return "CONTRACTOR"
	case "intern", "internship":
		return "INTERN"
	}
	return ""
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
