package main

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/OilNewsHub/internal/aggregator"
	"github.com/LJTian/OilNewsHub/internal/api"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/metrics"
	"github.com/LJTian/OilNewsHub/internal/render"
	"github.com/LJTian/OilNewsHub/internal/scheduler"
	"github.com/LJTian/OilNewsHub/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 单轮运行上限：所有来源和补全都有各自超时，这里只兜住异常情况
const runTimeout = 10 * time.Minute

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	sources, err := aggregator.Sources(cfg)
	if err != nil {
		zl.Fatal("load sources failed", zap.Error(err))
	}

	m := metrics.New(nil)
	agg, err := aggregator.FromConfig(cfg, sources, zl, m)
	if err != nil {
		zl.Fatal("init aggregator failed", zap.Error(err))
	}

	store := storage.NewStore(cfg.RedisAddr, zl.Named("storage"))
	defer func() { _ = store.Close() }()

	job := func(ctx context.Context) error {
		rep, stats := agg.BuildReport(ctx)
		if err := store.Save(ctx, rep); err != nil {
			// 内存快照已更新，Redis 失败不影响接口
			zl.Warn("save report to redis failed", zap.Error(err))
		}
		err := render.WriteFiles(cfg.OutputDir, rep)
		m.ObserveRun(stats.Elapsed, err)
		return err
	}

	s, err := scheduler.New(cfg.CronSpec, job, runTimeout, zl.Named("scheduler"))
	if err != nil {
		zl.Fatal("init scheduler failed", zap.Error(err))
	}
	s.Start()
	defer s.Stop()

	if cfg.BasicAuthUser == "" || cfg.BasicAuthPass == "" {
		zl.Info("APP_BASIC_USER / APP_BASIC_PASS not set, rebuild endpoint disabled")
	}

	r := gin.Default()
	apiServer := api.NewServer(store, s, m.Handler(), cfg.BasicAuthUser, cfg.BasicAuthPass)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	zl.Info("starting api server", zap.String("addr", addr), zap.String("cron", cfg.CronSpec))
	if err := r.Run(addr); err != nil {
		zl.Fatal("server exit", zap.Error(err))
	}
}
