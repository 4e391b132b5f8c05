// Package main provides the outbox relay service entry point. It
// drains the transactional outbox and publishes conversion events to
// the broker, with a circuit breaker between the two.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/infrastructure/postgres"
	"github.com/arogya-labs/nhcx-bridge/internal/infrastructure/redpanda"
	"github.com/arogya-labs/nhcx-bridge/internal/observability/metrics"
	"github.com/arogya-labs/nhcx-bridge/pkg/circuitbreaker"
)

func main() {
	godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	brokers := []string{"localhost:9092"}
	if b := os.Getenv("KAFKA_BROKERS"); b != "" {
		brokers = strings.Split(b, ",")
	}

	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to database")

	admin, err := redpanda.NewAdmin(brokers, logger)
	if err != nil {
		logger.Fatal("admin client creation failed", zap.Error(err))
	}
	if err := admin.EnsureTopics(ctx); err != nil {
		logger.Warn("topic setup failed", zap.Error(err))
	}
	admin.Close()

	producerCfg := redpanda.DefaultProducerConfig()
	producerCfg.Brokers = brokers
	producer, err := redpanda.NewProducer(producerCfg, logger)
	if err != nil {
		logger.Fatal("producer creation failed", zap.Error(err))
	}
	defer producer.Close()
	logger.Info("connected to broker", zap.Strings("brokers", brokers))

	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("event-publisher"), logger)
	if err != nil {
		logger.Fatal("circuit breaker creation failed", zap.Error(err))
	}

	m := metrics.New()
	publisher := &guardedPublisher{producer: producer, breaker: breaker, metrics: m}

	outbox := postgres.NewOutbox(pool, publisher, postgres.DefaultOutboxConfig(), logger)
	outbox.Start()

	go serveMetrics(metricsPort, logger)
	go maintenanceLoop(ctx, outbox, m, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	outbox.Stop()
	logger.Info("outbox relay stopped")
}

// guardedPublisher runs publishes through the circuit breaker so a
// broker outage backs up in the outbox table instead of retry storms.
type guardedPublisher struct {
	producer *redpanda.Producer
	breaker  *circuitbreaker.CircuitBreaker
	metrics  *metrics.Metrics
}

func (p *guardedPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	_, err := p.breaker.Execute(ctx, func() (any, error) {
		return nil, p.producer.Publish(ctx, topic, key, value)
	})
	if err == nil {
		p.metrics.EventsPublished.Inc()
	}
	p.metrics.CircuitBreakerState.WithLabelValues("event-publisher").Set(breakerStateValue(p.breaker.GetState()))
	return err
}

func breakerStateValue(s circuitbreaker.State) float64 {
	switch s {
	case circuitbreaker.StateOpen:
		return 1
	case circuitbreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func serveMetrics(port string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("metrics server listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("metrics server error", zap.Error(err))
	}
}

// maintenanceLoop moves exhausted entries to the dead letter topic,
// prunes old processed rows and exports the backlog gauge.
func maintenanceLoop(ctx context.Context, outbox *postgres.Outbox, m *metrics.Metrics, logger *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if moved, err := outbox.MoveToDeadLetter(ctx); err != nil {
			logger.Error("dead letter sweep failed", zap.Error(err))
		} else if moved > 0 {
			logger.Warn("entries moved to dead letter", zap.Int64("count", moved))
		}

		if _, err := outbox.CleanupProcessed(ctx, 24*time.Hour); err != nil {
			logger.Error("outbox cleanup failed", zap.Error(err))
		}

		if stats, err := outbox.GetStats(ctx); err == nil {
			m.OutboxPending.Set(float64(stats.Pending))
		}
	}
}
