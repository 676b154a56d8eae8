package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	appcfg "github.com/mfahadasghar/flow-fund/config"
	"github.com/mfahadasghar/flow-fund/internal/bootstrap"
	"github.com/mfahadasghar/flow-fund/internal/monitor"
)

const serviceName = "flow-fund-api"

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log := newLogger(cfg)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DB.MigrateOnStart {
		if err := bootstrap.RunMigrations(cfg.DB.DSN); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		log.Info("migrations up to date")
	}

	pool, err := bootstrap.OpenDB(ctx, cfg.DB)
	if err != nil {
		log.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	// Second connection for the database/sql read path of the event feed.
	sqlDB, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		log.Fatal("postgres (database/sql) open failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("redis connect failed", zap.Error(err))
	}
	defer rdb.Close()

	monitor.InitBusinessMetrics()
	bootstrap.SetGinMode(cfg.App.Environment)

	deps := bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Cfg:         cfg,
		DB:          pool,
		SQLDB:       sqlDB,
		Redis:       rdb,
		Log:         log,
	}

	svcs := bootstrap.BuildServices(deps)
	router := bootstrap.BuildRouter(deps, svcs)

	dustCron, err := bootstrap.StartDustReporter(cfg.Fund.DustReportCron, svcs.Allocator, log)
	if err != nil {
		log.Fatal("dust reporter failed to start", zap.Error(err))
	}
	defer dustCron.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func newLogger(cfg *appcfg.Config) *zap.Logger {
	var zcfg zap.Config
	if cfg.App.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.App.LogLevel); err == nil {
		zcfg.Level = lvl
	}
	log, err := zcfg.Build()
	if err != nil {
		panic("logger: " + err.Error())
	}
	return log
}
