// Package main is the entry point for the Hila planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pkordes/hila-planner/internal/config"
	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/extract"
	"github.com/pkordes/hila-planner/internal/handler"
	"github.com/pkordes/hila-planner/internal/middleware"
	"github.com/pkordes/hila-planner/internal/repo"
	"github.com/pkordes/hila-planner/internal/service"
	"github.com/pkordes/hila-planner/migrations"
	"github.com/pkordes/hila-planner/openapi"
)

// stores groups the repositories the services are built on.
type stores struct {
	assets    repo.AssetRepo
	itinerary repo.ItineraryRepo
	templates repo.TemplateRepo
	polish    repo.PolishRepo
}

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Storage ----------------------------------------------------------
	st := stores{
		assets:    repo.NewMemoryAssetRepo(),
		itinerary: repo.NewMemoryItineraryRepo(),
		templates: repo.NewMemoryTemplateRepo(),
		polish:    repo.NewMemoryPolishRepo(),
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := migrate(ctx, pool); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established")

		st.assets = repo.NewAssetRepo(pool)
		st.itinerary = repo.NewItineraryRepo(pool)
		st.templates = repo.NewTemplateRepo(pool)
	} else {
		slog.Warn("DATABASE_URL not set; using in-memory storage")
	}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.Info("redis connection established", "polish_ttl", cfg.PolishTTL.String())
		st.polish = repo.NewRedisPolishRepo(rdb, cfg.PolishTTL)
	}

	// --- Services ---------------------------------------------------------
	ids := domain.UUIDGenerator{}
	now := func() time.Time { return time.Now().UTC() }

	assets := service.NewAssetService(st.assets, ids, now)
	svc := handler.Services{
		Assets:    assets,
		Imports:   service.NewImportService(assets, extract.HeuristicExtractor{}, extract.ParseURLs, cfg.ImportConcurrency, logger),
		Trips:     service.NewTripService(st.itinerary, ids, now,
			service.WithShareBaseURL(cfg.ShareBaseURL), service.WithPolishOverlay(st.polish)),
		Templates: service.NewTemplateService(st.templates, st.itinerary, ids, now),
		Views:     service.NewViewService(st.assets, st.itinerary, st.polish),
		Polish:    service.NewPolishService(st.assets, st.itinerary, st.polish, service.IdentityEnhancer{}, cfg.ImportConcurrency, logger),
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(svc, logger, openapi.Spec).Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations. goose needs database/sql, so
// the pool is wrapped with the pgx stdlib adapter.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration.String())
	}
	return nil
}
