// Package providers defines the adapter contract every job search API implements
// and the shared pieces they use: windows, error classes, options and paging
package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobacq/internal/core/combo"
	"jobacq/internal/core/job"
	"jobacq/internal/platform/config"
	perr "jobacq/internal/platform/errors"
)

// Adapter maps one provider's API into canonical records.
// Query syntax never leaves the adapter.
type Adapter interface {
	Name() string

	// Metered providers bill per returned item
	Metered() bool

	Search(ctx context.Context, c combo.Combination, w Window) ([]job.Record, error)
}

// Window is the posting date range of a search
type Window int

const (
	// Window24h is the daily sweep window
	Window24h Window = iota + 1
	// Window30d is the backfill window
	Window30d
)

// ParseWindow accepts 24h|1d and 30d|720h
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "24h", "1d":
		return Window24h, nil
	case "30d", "720h":
		return Window30d, nil
	}
	return 0, perr.InvalidArgf("window %q: want 24h or 30d", s)
}

// String is the flag form
func (w Window) String() string {
	switch w {
	case Window24h:
		return "24h"
	case Window30d:
		return "30d"
	}
	return "unknown"
}

// Days is the window length in days
func (w Window) Days() int {
	if w == Window30d {
		return 30
	}
	return 1
}

// Class splits provider failures by what the caller should do next
type Class int

const (
	// ClassPermanent failures will fail again for the same query
	ClassPermanent Class = iota
	// ClassTransient failures may pass on a later run
	ClassTransient
)

func (c Class) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "permanent"
}

// Classify maps an adapter error to its class. Only a query the provider
// refuses and rejected credentials are permanent; everything else, including
// undecodable bodies and unrecognised failures, may pass on a later run
func Classify(err error) Class {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassTransient
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeUnauthorized, perr.ErrorCodeForbidden:
		return ClassPermanent
	}
	return ClassTransient
}

// Options is the per provider config block PROVIDER_<NAME>_*
type Options struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	RPS      float64
	Burst    int
	Retries  int
	Timeout  time.Duration
	PageSize int
	MaxPages int
}

// OptionsFrom reads cfg over def
func OptionsFrom(cfg config.Conf, def Options) Options {
	return Options{
		Enabled:  cfg.MayBool("ENABLED", def.Enabled),
		BaseURL:  strings.TrimRight(cfg.MayString("BASE_URL", def.BaseURL), "/"),
		APIKey:   cfg.MayString("API_KEY", def.APIKey),
		RPS:      cfg.MayFloat64("RPS", def.RPS),
		Burst:    cfg.MayInt("BURST", def.Burst),
		Retries:  cfg.MayInt("RETRIES", def.Retries),
		Timeout:  cfg.MayDuration("TIMEOUT", def.Timeout),
		PageSize: cfg.MayInt("PAGE_SIZE", def.PageSize),
		MaxPages: cfg.MayInt("MAX_PAGES", def.MaxPages),
	}
}

// Page fetches one page; page numbers start at 1
type Page func(ctx context.Context, page int) ([]job.Record, error)

// Paginate calls fetch for pages 1..maxPages and stops early on a short page.
// Any page error fails the whole search; partial pages are not kept.
func Paginate(ctx context.Context, maxPages, pageSize int, fetch Page) ([]job.Record, error) {
	if maxPages < 1 {
		maxPages = 1
	}
	var out []job.Record
	for p := 1; p <= maxPages; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := fetch(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
		if len(recs) == 0 || (pageSize > 0 && len(recs) < pageSize) {
			break
		}
	}
	return out, nil
}
