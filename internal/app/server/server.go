package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timeclock/internal/domain/auth"
	"timeclock/internal/domain/geofence"
	"timeclock/internal/domain/punch"
	"timeclock/internal/platform/config"
	"timeclock/internal/platform/db"
	"timeclock/internal/platform/metrics"
	authhandler "timeclock/internal/transport/http/handlers/auth"
	geofencehandler "timeclock/internal/transport/http/handlers/geofence"
	punchhandler "timeclock/internal/transport/http/handlers/punch"
	reportshandler "timeclock/internal/transport/http/handlers/reports"
	"timeclock/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	geofenceService := geofence.NewService(geofence.NewPostgresStore(pool))
	punchService := punch.NewService(punch.NewPostgresStore(pool), geofenceService, m)
	authStore := auth.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL).Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Route("/punch", punchhandler.NewHandler(punchService).Routes)
			r.Route("/reports", reportshandler.NewHandler(punchService).Routes)

			r.Route("/geofences", func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleAdmin))
				geofencehandler.NewHandler(geofenceService).Routes(r)
			})
		})
	})

	log.Printf("timeclock server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
