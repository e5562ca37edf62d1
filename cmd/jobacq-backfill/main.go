package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jobacq/internal/adapters/providers"
	"jobacq/internal/core/version"
	"jobacq/internal/modkit"
	"jobacq/internal/modkit/module"
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/config"
	"jobacq/internal/platform/logger"
	"jobacq/internal/platform/store"
	"jobacq/internal/schema"

	"jobacq/internal/services/acquisition"
	backfilldom "jobacq/internal/services/backfill/domain"
	backfillmod "jobacq/internal/services/backfill/module"
	quotamod "jobacq/internal/services/quota/module"

	"github.com/robfig/cron/v3"
)

const service = "jobacq-backfill"

func main() {
	var (
		fWindow    = flag.String("window", "24h", "posting window: 24h (daily sweep) or 30d (backfill)")
		fUser      = flag.String("user", "", "backfill one user's combinations instead of sweeping everyone")
		fProviders = flag.String("providers", "", "comma separated provider names; empty means every enabled one")
		fWorkers   = flag.Int("workers", 0, "dispatch concurrency; 0 keeps CORE_BACKFILL_WORKERS")
		fMigrate   = flag.Bool("migrate", false, "apply the embedded schema before running")
		fDaemon    = flag.Bool("daemon", false, "stay up and sweep on -schedule instead of running once")
		fSchedule  = flag.String("schedule", "@daily", "cron spec for -daemon")
		fVersion   = flag.Bool("version", false, "print the build and exit")
	)
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info(service).String())
		return
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	logger.Init(logger.FromEnv())
	l := logger.Get()

	window, err := providers.ParseWindow(*fWindow)
	if err != nil {
		l.Fatal().Err(err).Msg("bad -window")
	}
	if *fDaemon && *fUser != "" {
		l.Fatal().Msg("-daemon sweeps every user; drop -user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: service,
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "jobacq",
			ClientTag:  "backfill",
		},
		RDS: store.RedisConfig{
			Enabled: rdsCfg.MayBool("ENABLED", false),
			Addr:    rdsCfg.MayString("ADDR", "localhost:6379"),
			DB:      rdsCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	if *fMigrate {
		if err := schema.Apply(ctx, st.PG); err != nil {
			l.Fatal().Err(err).Msg("postgres schema failed")
		}
		if st.CH != nil {
			if err := schema.ApplyClickhouse(ctx, st.CH); err != nil {
				l.Fatal().Err(err).Msg("clickhouse schema failed")
			}
		}
		l.Info().Msg("schema applied")
	}

	// flags override the CORE_BACKFILL_* block
	opts := backfillmod.FromConfig(root)
	if *fProviders != "" {
		opts.Providers = strings.Split(*fProviders, ",")
	}
	if *fWorkers > 0 {
		opts.Workers = *fWorkers
	}

	set, err := acquisition.Build(modkit.FromStore(st, root), opts)
	if err != nil {
		l.Fatal().Err(err).Msg("module wiring failed")
	}
	runner := set.Runner()
	quota := module.MustPortsOf[quotamod.Ports](set.Quota).Quota

	once := func(ctx context.Context) error {
		var (
			res backfilldom.Result
			err error
		)
		if *fUser != "" {
			res, err = runner.RunForUser(ctx, *fUser, window)
		} else {
			res, err = runner.RunSweep(ctx, window)
		}
		if err != nil {
			return err
		}
		l.Info().
			Str("run_id", res.RunID).
			Int("new_combinations", res.NewCombinations).
			Int("postings_fetched", res.PostingsFetched).
			Int("postings_accepted", res.PostingsAccepted).
			Bool("partial", res.Partial).
			Msg("backfill done")

		chk, err := quota.CheckBudget(ctx)
		if err != nil {
			l.Warn().Err(err).Msg("quota check failed")
			return nil
		}
		fmt.Println(chk.String())
		return nil
	}

	if !*fDaemon {
		if err := once(ctx); err != nil {
			l.Fatal().Err(err).Msg("backfill failed")
		}
		return
	}

	// daemon: one sweep at a time; a tick that lands mid-run is skipped
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(*fSchedule, func() {
		if err := once(ctx); err != nil {
			l.Error().Err(err).Msg("scheduled sweep failed")
		}
	}); err != nil {
		l.Fatal().Err(err).Str("schedule", *fSchedule).Msg("bad -schedule")
	}
	c.Start()
	l.Info().Str("schedule", *fSchedule).Str("window", window.String()).Msg("backfill daemon started")

	<-ctx.Done()
	<-c.Stop().Done()
	l.Info().Msg("backfill daemon stopped")
}
