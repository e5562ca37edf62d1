// Package service provides the backfill runner: it finds combinations no
// provider has fetched yet, dispatches them to a bounded worker pool under the
// quota budget, admits the results and commits the ledger
package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/combo"
	"jobacq/internal/modkit/repokit"
	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/logger"
	"jobacq/internal/services/backfill/domain"
	"jobacq/internal/services/backfill/guardrails"
	dedupdom "jobacq/internal/services/dedup/domain"
	ledgerdom "jobacq/internal/services/ledger/domain"
	prefsdom "jobacq/internal/services/prefs/domain"
	quotadom "jobacq/internal/services/quota/domain"
)

// Config holds configuration options for the backfill service
type Config struct {
	// Workers bounds concurrent dispatches; <=0 -> 1
	Workers int

	// Timeouts applied via guardrails
	Timeouts guardrails.Timeouts
}

// Ports are the services the runner drives
type Ports struct {
	Candidates prefsdom.CandidatesPort
	Ledger     ledgerdom.ServicePort
	Dedup      dedupdom.ServicePort
	Quota      quotadom.ServicePort
}

// Service implements domain.RunnerPort
type Service struct {
	DB       repokit.TxRunner
	Runs     repokit.Binder[domain.RunRepo]
	Adapters []providers.Adapter
	Ports    Ports
	Claims   domain.Claimer
	Events   domain.EventSink
	Cfg      Config

	now   func() time.Time
	newID func() string
}

// New constructs the backfill service. Claims and events may be nil
func New(
	db repokit.TxRunner,
	runs repokit.Binder[domain.RunRepo],
	adapters []providers.Adapter,
	ports Ports,
	claims domain.Claimer,
	events domain.EventSink,
	cfg Config,
) *Service {
	if db == nil {
		panic("backfill.Service requires a non nil TxRunner")
	}
	if runs == nil {
		panic("backfill.Service requires a non nil RunRepo binder")
	}
	if ports.Candidates == nil || ports.Ledger == nil || ports.Dedup == nil || ports.Quota == nil {
		panic("backfill.Service requires candidates, ledger, dedup and quota ports")
	}
	if claims == nil {
		claims = guardrails.NoClaims()
	}
	if events == nil {
		events = nopEvents{}
	}
	return &Service{
		DB: db, Runs: runs,
		Adapters: adapters,
		Ports:    ports,
		Claims:   claims,
		Events:   events,
		Cfg:      cfg,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

var _ domain.RunnerPort = (*Service)(nil)

// RunForUser implements domain.RunnerPort
func (s *Service) RunForUser(ctx context.Context, userID string, w providers.Window) (domain.Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Result{}, perr.WithField(perr.Validationf("user id is required"), "user_id")
	}
	combos, err := s.Ports.Candidates.UserCombinations(ctx, userID)
	if err != nil {
		return domain.Result{}, err
	}
	return s.run(ctx, domain.TriggerUser, userID, w, combos)
}

// RunSweep implements domain.RunnerPort
func (s *Service) RunSweep(ctx context.Context, w providers.Window) (domain.Result, error) {
	combos, err := s.Ports.Candidates.DistinctCombinations(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	return s.run(ctx, domain.TriggerSweep, "", w, combos)
}

type task struct {
	adapter providers.Adapter
	combo   combo.Combination
}

func (s *Service) run(
	ctx context.Context, trig domain.Trigger, userID string, w providers.Window, combos []combo.Combination,
) (res domain.Result, retErr error) {
	if w != providers.Window24h && w != providers.Window30d {
		return res, perr.InvalidArgf("unknown window %d", w)
	}
	if len(s.Adapters) == 0 {
		return res, perr.InvalidArgf("no providers configured")
	}

	res.RunID = s.newID()
	ctx = logger.WithRun(ctx, res.RunID, userID)
	log := logger.C(ctx)
	started := s.now()

	if err := s.audit(ctx, func(r domain.RunRepo, c context.Context) error {
		return r.StartRun(c, domain.RunStart{RunID: res.RunID, Trigger: trig, UserID: userID, Window: w})
	}); err != nil {
		if perr.IsConnectivity(err) {
			return res, perr.FromPostgres(err, "backfill: start run")
		}
		log.Warn().Err(err).Msg("backfill: run audit start failed")
	}

	defer func() {
		fctx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
		defer cancel()
		if err := s.Events.Flush(fctx); err != nil {
			log.Warn().Err(err).Msg("backfill: dispatch events flush failed")
		}
		errText := ""
		if retErr != nil {
			errText = retErr.Error()
		}
		if err := s.audit(fctx, func(r domain.RunRepo, c context.Context) error {
			return r.FinishRun(c, res.RunID, res, errText)
		}); err != nil {
			log.Warn().Err(err).Msg("backfill: run audit finish failed")
		}
		log.Info().
			Str("trigger", string(trig)).
			Str("window", w.String()).
			Int("combinations", len(combos)).
			Int("new_combinations", res.NewCombinations).
			Int("dispatched", res.Dispatched).
			Int("postings_fetched", res.PostingsFetched).
			Int("postings_accepted", res.PostingsAccepted).
			Int("failed_transient", res.FailedTransient).
			Int("failed_permanent", res.FailedPermanent).
			Int("conflicts", res.Conflicts).
			Int("skipped_quota", res.SkippedQuota).
			Str("quota_status", res.QuotaStatus).
			Bool("partial", res.Partial).
			Dur("elapsed", s.now().Sub(started)).
			Msg("backfill: run finished")
	}()

	tasks, fresh, err := s.plan(ctx, combos)
	if err != nil {
		return res, err
	}
	res.NewCombinations = fresh

	dispatched, err := s.dispatchAll(ctx, w, res.RunID, tasks, &res)
	if dispatched < len(tasks) {
		res.Partial = true
	}

	res.QuotaStatus = "unknown"
	qctx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
	if check, qerr := s.Ports.Quota.CheckBudget(qctx); qerr == nil {
		res.QuotaStatus = string(check.Status)
	} else {
		log.Warn().Err(qerr).Msg("backfill: final quota check failed")
	}
	cancel()

	if err != nil {
		res.Partial = true
		return res, err
	}
	return res, nil
}

// plan diffs combos against each provider's ledger. fresh counts distinct
// combinations new to at least one provider
func (s *Service) plan(ctx context.Context, combos []combo.Combination) ([]task, int, error) {
	var tasks []task
	seen := map[combo.Key]struct{}{}
	for _, a := range s.Adapters {
		dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
		unfetched, err := s.Ports.Ledger.DiffUnfetched(dctx, combos, a.Name())
		cancel()
		if err != nil {
			if perr.IsConnectivity(err) {
				return nil, 0, err
			}
			logger.C(ctx).Error().Err(err).Str("provider", a.Name()).Msg("backfill: ledger diff failed; provider skipped")
			continue
		}
		for _, c := range unfetched {
			seen[c.Key()] = struct{}{}
			tasks = append(tasks, task{adapter: a, combo: c})
		}
	}
	return tasks, len(seen), nil
}

// dispatchAll fans tasks out to the worker pool and merges their counters into
// res. It returns how many tasks were started and the first fatal error
func (s *Service) dispatchAll(
	ctx context.Context, w providers.Window, runID string, tasks []task, res *domain.Result,
) (int, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		fatal   error
		spent   atomic.Bool
		wg      sync.WaitGroup
		started int
	)
	sem := make(chan struct{}, max(s.Cfg.Workers, 1))

loop:
	for _, t := range tasks {
		select {
		case <-runCtx.Done():
			break loop
		case sem <- struct{}{}:
		}
		started++
		wg.Add(1)
		go func(t task) {
			defer func() { <-sem; wg.Done() }()
			d, err := s.dispatch(runCtx, w, runID, t, &spent)
			mu.Lock()
			defer mu.Unlock()
			merge(res, d)
			if err != nil && fatal == nil {
				fatal = err
				cancel()
			}
		}(t)
	}
	wg.Wait()

	if fatal != nil {
		return started, fatal
	}
	if err := ctx.Err(); err != nil {
		return started, err
	}
	return started, nil
}

// dispatch runs one (provider, combination) unit. Only storage connectivity
// failures come back as errors; everything else is counted
func (s *Service) dispatch(
	ctx context.Context, w providers.Window, runID string, t task, spent *atomic.Bool,
) (d domain.Result, fatal error) {
	name := t.adapter.Name()
	k := t.combo.Key()
	log := logger.C(ctx).With().Str("provider", name).Str("combo", k.String()).Logger()

	ev := domain.Event{RunID: runID, At: s.now(), Provider: name, Key: k, Window: w}
	defer func() { s.Events.Add(ev) }()

	if t.adapter.Metered() {
		if spent.Load() {
			d.SkippedQuota++
			ev.Outcome = domain.OutcomeSkippedQuota
			return d, nil
		}
		qctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
		check, err := s.Ports.Quota.CheckBudget(qctx)
		cancel()
		if err != nil {
			if perr.IsConnectivity(err) {
				ev.Outcome, ev.Err = domain.OutcomeStorage, err.Error()
				return d, err
			}
			// without a reading the budget cannot be trusted; leave it for the next run
			log.Warn().Err(err).Msg("backfill: quota check failed; dispatch skipped")
			d.SkippedQuota++
			ev.Outcome, ev.Err = domain.OutcomeSkippedQuota, err.Error()
			return d, nil
		}
		if budgetSpent(check) {
			qerr := perr.QuotaExceededf("%s", check)
			if spent.CompareAndSwap(false, true) {
				log.Warn().Err(qerr).Msg("backfill: quota spent; halting metered dispatches")
			}
			d.SkippedQuota++
			ev.Outcome, ev.Err = domain.OutcomeSkippedQuota, qerr.Error()
			return d, nil
		}

		release, ok, err := s.Claims.Claim(ctx, name, k)
		switch {
		case err != nil:
			log.Debug().Err(err).Msg("backfill: claim unavailable; dispatching unclaimed")
		case !ok:
			d.ClaimedElsewhere++
			ev.Outcome = domain.OutcomeClaimed
			return d, nil
		default:
			defer release()
		}

		// a claim released after its holder committed can be taken by a run that
		// planned before that commit; the ledger decides whether a fetch is still due
		fresh, err := s.stillUnfetched(ctx, t)
		if err != nil {
			if perr.IsConnectivity(err) {
				ev.Outcome, ev.Err = domain.OutcomeStorage, err.Error()
				return d, err
			}
			log.Warn().Err(err).Msg("backfill: ledger recheck failed; dispatching")
		} else if !fresh {
			d.ClaimedElsewhere++
			ev.Outcome = domain.OutcomeClaimed
			log.Debug().Msg("backfill: committed by another run since planning")
			return d, nil
		}
	}

	d.Dispatched++
	began := s.now()
	fctx, cancel := guardrails.ForDispatch(ctx, s.Cfg.Timeouts)
	recs, err := t.adapter.Search(fctx, t.combo, w)
	cancel()
	ev.Elapsed = s.now().Sub(began)

	if err != nil {
		ev.Err = err.Error()
		if ctx.Err() != nil || providers.Classify(err) == providers.ClassTransient {
			log.Warn().Err(err).Msg("backfill: transient provider failure; left for next run")
			d.FailedTransient++
			ev.Outcome = domain.OutcomeTransient
			return d, nil
		}
		log.Error().Err(err).Str("code", perr.CodeOf(err).String()).Msg("backfill: provider rejected query; marking combination done")
		d.FailedPermanent++
		ev.Outcome = domain.OutcomeRejected
		return d, s.commit(ctx, log, t, 0, ledgerdom.OutcomeRejected, &d, &ev)
	}

	n := len(recs)
	d.PostingsFetched = n
	ev.Items = n

	if t.adapter.Metered() && n > 0 {
		qctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
		_, err := s.Ports.Quota.RecordUsage(qctx, n)
		cancel()
		if err != nil {
			if perr.IsConnectivity(err) {
				ev.Outcome = domain.OutcomeStorage
				return d, err
			}
			log.Error().Err(err).Int("units", n).Msg("backfill: quota usage not recorded")
		}
	}

	actx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	tally, err := s.Ports.Dedup.AdmitAll(actx, recs)
	cancel()
	d.PostingsAccepted = tally.Accepted
	d.Invalid = tally.Invalid
	ev.Accepted = tally.Accepted
	if err != nil {
		ev.Outcome, ev.Err = domain.OutcomeStorage, err.Error()
		if perr.IsConnectivity(err) {
			return d, err
		}
		// not committed, so the combination is fetched again next run
		log.Error().Err(err).Msg("backfill: admitting records failed")
		return d, nil
	}

	outcome := ledgerdom.OutcomeOK
	ev.Outcome = domain.OutcomeOK
	if n == 0 {
		outcome = ledgerdom.OutcomeEmpty
		ev.Outcome = domain.OutcomeEmpty
	}
	return d, s.commit(ctx, log, t, n, outcome, &d, &ev)
}

// stillUnfetched asks the ledger again for one (provider, combination)
func (s *Service) stillUnfetched(ctx context.Context, t task) (bool, error) {
	lctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	left, err := s.Ports.Ledger.DiffUnfetched(lctx, []combo.Combination{t.combo}, t.adapter.Name())
	if err != nil {
		return false, err
	}
	return len(left) > 0, nil
}

func (s *Service) commit(
	ctx context.Context, log logger.Logger, t task, found int, outcome ledgerdom.Outcome, d *domain.Result, ev *domain.Event,
) error {
	cctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	c, err := s.Ports.Ledger.Commit(cctx, t.combo, t.adapter.Name(), found, outcome)
	if err != nil {
		ev.Outcome, ev.Err = domain.OutcomeStorage, err.Error()
		if perr.IsConnectivity(err) {
			return err
		}
		log.Error().Err(err).Msg("backfill: ledger commit failed")
		return nil
	}
	if !c.Created {
		d.Conflicts++
		log.Debug().Msg("backfill: ledger row committed by another run")
	}
	return nil
}

// audit runs fn against the run repo inside a bounded transaction
func (s *Service) audit(ctx context.Context, fn func(domain.RunRepo, context.Context) error) error {
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	return repokit.WithTx(dctx, s.DB, s.Runs, func(r domain.RunRepo) error { return fn(r, dctx) })
}

// budgetSpent stops metered dispatches once nothing is left of the budget,
// not only once it is overrun
func budgetSpent(c quotadom.Check) bool {
	return c.Exceeded() || c.Projection.Consumed >= c.Projection.Budget
}

func merge(dst *domain.Result, d domain.Result) {
	dst.PostingsFetched += d.PostingsFetched
	dst.PostingsAccepted += d.PostingsAccepted
	dst.Dispatched += d.Dispatched
	dst.FailedTransient += d.FailedTransient
	dst.FailedPermanent += d.FailedPermanent
	dst.Conflicts += d.Conflicts
	dst.SkippedQuota += d.SkippedQuota
	dst.ClaimedElsewhere += d.ClaimedElsewhere
	dst.Invalid += d.Invalid
	if d.SkippedQuota > 0 {
		dst.Partial = true
	}
}

type nopEvents struct{}

func (nopEvents) Add(domain.Event)            {}
func (nopEvents) Flush(context.Context) error { return nil }
