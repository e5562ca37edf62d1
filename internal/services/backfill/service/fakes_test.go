package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
	"jobacq/internal/core/job"
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/services/backfill/domain"
	dedupdom "jobacq/internal/services/dedup/domain"
	ledgerdom "jobacq/internal/services/ledger/domain"
	quotadom "jobacq/internal/services/quota/domain"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (d nopDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error     { return fn(d) }

type fakeRuns struct {
	mu       sync.Mutex
	started  []domain.RunStart
	finished map[string]string
}

func (f *fakeRuns) StartRun(_ context.Context, s domain.RunStart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, s)
	return nil
}

func (f *fakeRuns) FinishRun(_ context.Context, runID string, _ domain.Result, errText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished == nil {
		f.finished = map[string]string{}
	}
	f.finished[runID] = errText
	return nil
}

// fakeAdapter answers from a table keyed by title; unknown titles return one posting
type fakeAdapter struct {
	name    string
	metered bool

	mu      sync.Mutex
	calls   map[string]int
	results map[string][]job.Record
	errs    map[string]error
	before  func(ctx context.Context) error
}

func newAdapter(name string, metered bool) *fakeAdapter {
	return &fakeAdapter{name: name, metered: metered, calls: map[string]int{}, results: map[string][]job.Record{}, errs: map[string]error{}}
}

func (a *fakeAdapter) Name() string  { return a.name }
func (a *fakeAdapter) Metered() bool { return a.metered }

func (a *fakeAdapter) Search(ctx context.Context, c combo.Combination, _ providers.Window) ([]job.Record, error) {
	if a.before != nil {
		if err := a.before(ctx); err != nil {
			return nil, err
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[c.Title]++
	if err, ok := a.errs[c.Title]; ok {
		return nil, err
	}
	if recs, ok := a.results[c.Title]; ok {
		return recs, nil
	}
	return []job.Record{posting(a.name, c.Title+"-1", c.Title, "Acme", c.Location)}, nil
}

func (a *fakeAdapter) total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, v := range a.calls {
		n += v
	}
	return n
}

func posting(provider, id, title, company, location string) job.Record {
	return job.Record{ExternalID: id, Provider: provider, Title: title, Company: company, Location: location, Description: "desc " + title}
}

type fakeCandidates struct {
	byUser map[string][]combo.Combination
}

func (f fakeCandidates) UserCombinations(_ context.Context, userID string) ([]combo.Combination, error) {
	return f.byUser[userID], nil
}

func (f fakeCandidates) DistinctCombinations(context.Context) ([]combo.Combination, error) {
	seen := map[combo.Key]bool{}
	var out []combo.Combination
	for _, cs := range f.byUser {
		for _, c := range cs {
			if !seen[c.Key()] {
				seen[c.Key()] = true
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type ledgerRow struct {
	found   int
	outcome ledgerdom.Outcome
}

type fakeLedger struct {
	mu        sync.Mutex
	rows      map[string]ledgerRow
	commitErr error
}

func newLedger() *fakeLedger { return &fakeLedger{rows: map[string]ledgerRow{}} }

func lid(provider string, c combo.Combination) string { return provider + "#" + c.Key().String() }

func (f *fakeLedger) DiffUnfetched(_ context.Context, cs []combo.Combination, provider string) ([]combo.Combination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []combo.Combination
	for _, c := range cs {
		if _, ok := f.rows[lid(provider, c)]; !ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeLedger) Commit(_ context.Context, c combo.Combination, provider string, found int, o ledgerdom.Outcome) (ledgerdom.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return ledgerdom.Commit{}, f.commitErr
	}
	if _, ok := f.rows[lid(provider, c)]; ok {
		return ledgerdom.Commit{}, nil
	}
	f.rows[lid(provider, c)] = ledgerRow{found: found, outcome: o}
	return ledgerdom.Commit{Created: true}, nil
}

func (f *fakeLedger) row(provider string, c combo.Combination) (ledgerRow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[lid(provider, c)]
	return r, ok
}

type fakeDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeDedup) Admit(_ context.Context, rec job.Record) (dedupdom.Admission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.Company == "" {
		return dedupdom.Admission{Reason: dedupdom.ReasonInvalid}, nil
	}
	rec = rec.Fingerprinted()
	if f.seen[rec.Fingerprint] {
		return dedupdom.Admission{Reason: dedupdom.ReasonDuplicate}, nil
	}
	f.seen[rec.Fingerprint] = true
	return dedupdom.Admission{Accepted: true, Reason: dedupdom.ReasonAccepted}, nil
}

func (f *fakeDedup) AdmitAll(ctx context.Context, recs []job.Record) (dedupdom.Tally, error) {
	var t dedupdom.Tally
	for _, r := range recs {
		a, _ := f.Admit(ctx, r)
		t.Add(a)
	}
	return t, nil
}

type fakeQuota struct {
	mu       sync.Mutex
	budget   int64
	consumed int64
}

func (f *fakeQuota) RecordUsage(_ context.Context, units int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumed += int64(units)
	return f.consumed, nil
}

func (f *fakeQuota) ProjectMonthly(context.Context) (quotadom.Projection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return quotadom.Projection{Consumed: f.consumed, Budget: f.budget}, nil
}

func (f *fakeQuota) CheckBudget(ctx context.Context) (quotadom.Check, error) {
	p, _ := f.ProjectMonthly(ctx)
	st := quotadom.StatusOK
	if p.Consumed > p.Budget {
		st = quotadom.StatusExceeded
	}
	return quotadom.Check{Status: st, Projection: p}, nil
}

type fakeClaims struct{ held map[string]bool }

func (f fakeClaims) Claim(_ context.Context, provider string, k combo.Key) (func(), bool, error) {
	if f.held[provider+"#"+k.String()] {
		return func() {}, false, nil
	}
	return func() {}, true, nil
}

// lateClaims grants every claim but runs onClaim first, standing in for a
// holder that committed and released between this run's plan and its claim
type lateClaims struct {
	onClaim func(provider string, k combo.Key)
}

func (f lateClaims) Claim(_ context.Context, provider string, k combo.Key) (func(), bool, error) {
	f.onClaim(provider, k)
	return func() {}, true, nil
}

type memEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *memEvents) Add(ev domain.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

func (m *memEvents) Flush(context.Context) error { return nil }

func (m *memEvents) count(o domain.Outcome) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Outcome == o {
			n++
		}
	}
	return n
}

type harness struct {
	svc        *Service
	runs       *fakeRuns
	ledger     *fakeLedger
	dedup      *fakeDedup
	quota      *fakeQuota
	events     *memEvents
	candidates fakeCandidates
	metered    *fakeAdapter
	free       *fakeAdapter
}

func newHarness(budget int64, workers int) *harness {
	h := &harness{
		runs:       &fakeRuns{},
		ledger:     newLedger(),
		dedup:      &fakeDedup{seen: map[string]bool{}},
		quota:      &fakeQuota{budget: budget},
		events:     &memEvents{},
		candidates: fakeCandidates{byUser: map[string][]combo.Combination{}},
		metered:    newAdapter("jsearch", true),
		free:       newAdapter("govboard", false),
	}
	h.svc = New(nopDB{},
		repokit.BindFunc[domain.RunRepo](func(repokit.Queryer) domain.RunRepo { return h.runs }),
		[]providers.Adapter{h.metered, h.free},
		Ports{Candidates: h.candidates, Ledger: h.ledger, Dedup: h.dedup, Quota: h.quota},
		nil, h.events,
		Config{Workers: workers},
	)
	n := 0
	var mu sync.Mutex
	h.svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("run-%d", n)
	}
	h.svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return h
}

func combos(titles ...string) []combo.Combination {
	out := make([]combo.Combination, 0, len(titles))
	for _, t := range titles {
		out = append(out, combo.Combination{Title: t, Location: "Berlin"})
	}
	return out
}
