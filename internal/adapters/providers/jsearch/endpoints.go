package jsearch

import (
	"context"
	"net/url"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/adapters/providers/httpc"
	"jobacq/internal/core/combo"
	"jobacq/internal/core/job"
)

// recentEndpoint is /search: employer_name, job_city/job_country, job_description.
// job_state is left out of the location; for city states it repeats the city
type recentEndpoint struct{}

type recentItem struct {
	JobID          string   `json:"job_id"`
	Title          string   `json:"job_title"`
	EmployerName   string   `json:"employer_name"`
	City           string   `json:"job_city"`
	Country        string   `json:"job_country"`
	Description    string   `json:"job_description"`
	ApplyLink      string   `json:"job_apply_link"`
	PostedAt       string   `json:"job_posted_at_datetime_utc"`
	MinSalary      *float64 `json:"job_min_salary"`
	MaxSalary      *float64 `json:"job_max_salary"`
	SalaryCurrency string   `json:"job_salary_currency"`
	SalaryPeriod   string   `json:"job_salary_period"`
}

func (recentEndpoint) path() string { return "/search" }

func (recentEndpoint) params(c combo.Combination, w providers.Window, page, size int) url.Values {
	return commonParams(c, w, page, size)
}

func (e recentEndpoint) fetch(ctx context.Context, cl *httpc.Client, q url.Values) ([]job.Record, error) {
	var body struct {
		Status string       `json:"status"`
		Data   []recentItem `json:"data"`
	}
	if err := cl.GetJSON(ctx, e.path(), q, &body); err != nil {
		return nil, err
	}
	out := make([]job.Record, 0, len(body.Data))
	for _, it := range body.Data {
		r := job.Record{
			ExternalID:  it.JobID,
			Provider:    Name,
			Title:       it.Title,
			Company:     it.EmployerName,
			Location:    joinNonEmpty(", ", it.City, it.Country),
			Description: it.Description,
			URL:         it.ApplyLink,
			PostedDate:  parseTime(it.PostedAt),
		}
		if it.MinSalary != nil || it.MaxSalary != nil {
			r.Salary = &job.SalaryRange{Min: it.MinSalary, Max: it.MaxSalary, Currency: it.SalaryCurrency, Period: it.SalaryPeriod}
		}
		out = append(out, r)
	}
	return out, nil
}

// historicalEndpoint is /search-v2: company_name, location, description
type historicalEndpoint struct{}

type historicalItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PostedAt    string `json:"posted_at"`
}

func (historicalEndpoint) path() string { return "/search-v2" }

func (historicalEndpoint) params(c combo.Combination, w providers.Window, page, size int) url.Values {
	return commonParams(c, w, page, size)
}

func (e historicalEndpoint) fetch(ctx context.Context, cl *httpc.Client, q url.Values) ([]job.Record, error) {
	var body struct {
		Data []historicalItem `json:"data"`
	}
	if err := cl.GetJSON(ctx, e.path(), q, &body); err != nil {
		return nil, err
	}
	out := make([]job.Record, 0, len(body.Data))
	for _, it := range body.Data {
		out = append(out, job.Record{
			ExternalID:  it.ID,
			Provider:    Name,
			Title:       it.Title,
			Company:     it.CompanyName,
			Location:    it.Location,
			Description: it.Description,
			URL:         it.URL,
			PostedDate:  parseTime(it.PostedAt),
		})
	}
	return out, nil
}
