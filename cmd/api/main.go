package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/showcasehq/showcase/internal/auth"
	"github.com/showcasehq/showcase/internal/cache"
	"github.com/showcasehq/showcase/internal/config"
	"github.com/showcasehq/showcase/internal/db"
	httpx "github.com/showcasehq/showcase/internal/http"
	"github.com/showcasehq/showcase/internal/observability"
	"github.com/showcasehq/showcase/internal/repo/memory"
	"github.com/showcasehq/showcase/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in
	if cfg.OTELEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "showcase", cfg.OTELEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	prom := observability.NewProm()

	deps := httpx.Deps{
		Prom: prom,
	}

	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store, data will not survive restarts")
		deps.Users = memory.NewUsersRepo()
		deps.Projects = memory.NewProjectsRepo()

	default:
		pool, err := db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		ctx, cancel := config.WithTimeout(10 * time.Second)
		err = db.Migrate(ctx, pool)
		cancel()

		if err != nil {
			log.Error("schema migration failed", "err", err)
			os.Exit(1)
		}

		deps.Users = postgres.NewUsersRepo(pool, prom)
		deps.Projects = postgres.NewProjectsRepo(pool, prom)
		deps.Ping = func() error {
			pctx, pcancel := config.WithTimeout(1 * time.Second)
			defer pcancel()
			return pool.Ping(pctx)
		}
	}

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL,
		})

		if err != nil {
			log.Error("redis connection failed, falling back to in-process cache", "err", err)
			deps.Cache = cache.New(cfg.CacheTTL)
		} else {
			defer rc.Close()
			deps.Cache = rc
		}
	} else {
		deps.Cache = cache.New(cfg.CacheTTL)
	}

	if cfg.AuthMode == "jwt" && cfg.JWTSecret != "" {
		deps.Verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	} else {
		deps.Verifier = auth.Passthrough{}
	}

	router := httpx.NewRouter(log, cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
