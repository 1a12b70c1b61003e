package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/operadash/betting-ops-core/internal/history/repo"
	"github.com/operadash/betting-ops-core/internal/settlement"
	"github.com/operadash/betting-ops-core/internal/shared/cache"
	"github.com/operadash/betting-ops-core/internal/shared/config"
	"github.com/operadash/betting-ops-core/internal/shared/db"
	sharedkafka "github.com/operadash/betting-ops-core/internal/shared/kafka"
	"github.com/operadash/betting-ops-core/internal/shared/logger"
	"github.com/operadash/betting-ops-core/internal/shared/metrics"
	"github.com/operadash/betting-ops-core/internal/stats/store"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres (histórico para recomputação) e Redis (snapshots)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka: consumer de order_settled e writer da DLQ
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicOrderSettled, "settlement-stats")
	defer reader.Close()

	dlq := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOrderSettledDLQ)
	defer dlq.Close()

	// Métricas Prometheus do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "eventos consumidos"})
	applied := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_snapshots_applied_total", Help: "appends incrementais aplicados"})
	recomputed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_scopes_recomputed_total", Help: "escopos recomputados do histórico"})
	mismatches := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_state_mismatches_total", Help: "divergências state vs classificador"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, applied, recomputed, mismatches, errorsBy)

	consumer := &settlement.Consumer{
		Log:    log,
		Reader: reader,
		Store:  store.New(rdb),
		Repo:   repo.NewOrders(pg),
		DLQ:    dlq,

		OnConsumed:   func() { consumed.Inc() },
		OnApplied:    func() { applied.Inc() },
		OnRecomputed: func() { recomputed.Inc() },
		OnMismatch:   func() { mismatches.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	// Shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicOrderSettled),
		zap.String("dlq", cfg.TopicOrderSettledDLQ),
	)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("consumer", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
