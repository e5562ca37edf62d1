// Package job defines the canonical job record every provider maps into
package job

import (
	"time"

	"jobacq/internal/core/fingerprint"
)

// SalaryRange is optional pay information as the provider stated it
type SalaryRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Period   string   `json:"period,omitempty"`
}

// Record is a canonical job posting. Adapters leave unmapped fields empty;
// validation rejects records missing title, company or location.
type Record struct {
	ExternalID  string       `json:"external_id" validate:"notblank"`
	Provider    string       `json:"provider" validate:"notblank"`
	Title       string       `json:"title" validate:"notblank"`
	Company     string       `json:"company" validate:"notblank"`
	Location    string       `json:"location" validate:"notblank"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	PostedDate  *time.Time   `json:"posted_date,omitempty"`
	Salary      *SalaryRange `json:"salary_range,omitempty"`

	// Fingerprint is filled by Fingerprinted
	Fingerprint string `json:"content_fingerprint,omitempty"`
}

// Fingerprinted returns r with its content fingerprint set
func (r Record) Fingerprinted() Record {
	r.Fingerprint = fingerprint.Compute(r.Title, r.Company, r.Location, r.Description)
	return r
}
