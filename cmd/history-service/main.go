package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/operadash/betting-ops-core/internal/history"
	hhttp "github.com/operadash/betting-ops-core/internal/history/http"
	"github.com/operadash/betting-ops-core/internal/history/platform"
	"github.com/operadash/betting-ops-core/internal/history/repo"
	"github.com/operadash/betting-ops-core/internal/shared/cache"
	"github.com/operadash/betting-ops-core/internal/shared/config"
	"github.com/operadash/betting-ops-core/internal/shared/db"
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

	// Postgres (leitura de pedidos)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (snapshots de estatísticas)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// deps
	orders := repo.NewOrders(pg)
	snaps := store.New(rdb)
	pcli := platform.New(cfg.PlatformBaseURL)
	svc := history.NewService(log, orders, snaps, pcli)

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	api := &hhttp.API{Log: log, Svc: svc}
	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{Addr: addr, Handler: api.Router()}

	log.Info("history-service listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
