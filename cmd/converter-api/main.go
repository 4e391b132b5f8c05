// Package main provides the converter API service entry point.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/api/handlers"
	"github.com/arogya-labs/nhcx-bridge/internal/api/middleware"
	"github.com/arogya-labs/nhcx-bridge/internal/infrastructure/postgres"
	"github.com/arogya-labs/nhcx-bridge/internal/observability/metrics"
	"github.com/arogya-labs/nhcx-bridge/internal/observability/tracing"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline"
)

const (
	serviceName    = "converter-api"
	serviceVersion = "1.0.0"
)

// Config holds application configuration.
type Config struct {
	Port         string
	DatabaseURL  string
	APIKeys      map[string]string
	OTLPEndpoint string
	Environment  string
}

func main() {
	godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := loadConfig()

	ctx := context.Background()
	provider, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     1.0,
	})
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer provider.Shutdown(ctx)
	}

	m := metrics.New()
	converter := pipeline.NewConverter(m, logger)

	// Persistence is optional; without DATABASE_URL the service still
	// converts but keeps no history.
	var store handlers.ConversionStore
	checks := map[string]handlers.HealthCheck{}
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("database ping failed", zap.Error(err))
		}
		logger.Info("connected to database")

		pgStore := postgres.NewConversionStore(pool, logger)
		if err := pgStore.InitSchema(ctx); err != nil {
			logger.Fatal("schema init failed", zap.Error(err))
		}
		store = pgStore
		checks["postgres"] = pgStore.Ping
	} else {
		logger.Warn("DATABASE_URL not set, running without persistence")
	}

	convertHandler := handlers.NewConvertHandler(converter, store, logger)
	healthHandler := handlers.NewHealthHandler(serviceName, serviceVersion, checks)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing(serviceName))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKeys))
		r.Mount("/", convertHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting converter API", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func loadConfig() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	otlp := os.Getenv("OTLP_ENDPOINT")
	if otlp == "" {
		otlp = "localhost:4317"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	apiKeys := map[string]string{
		"demo-api-key-12345": "demo-client",
	}
	if key := os.Getenv("API_KEY"); key != "" {
		apiKeys[key] = "env-client"
	}

	return Config{
		Port:         port,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		APIKeys:      apiKeys,
		OTLPEndpoint: otlp,
		Environment:  env,
	}
}
