package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobacq/internal/modkit"
	"jobacq/internal/modkit/repokit"
	"jobacq/internal/platform/config"
	"jobacq/internal/platform/logger"
	phttp "jobacq/internal/platform/net/http"
	"jobacq/internal/platform/store"

	"jobacq/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "jobacq-api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "jobacq",
			ClientTag:  "api",
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

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	if err := api.Mount(srv.Router(), api.Options{
		Config: apiCfg,
		Deps:   modkit.FromStore(st, root),
	}); err != nil {
		l.Fatal().Err(err).Msg("api mount failed")
	}

	if err := srv.Run(ctx, apiCfg.MayDuration("GRACE", 30*time.Second)); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
