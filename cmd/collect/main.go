package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/LJTian/OilNewsHub/internal/aggregator"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/render"
	"github.com/LJTian/OilNewsHub/internal/scheduler"
	"go.uber.org/zap"
)

// 单轮运行上限，与 cmd/api 一致
const runTimeout = 10 * time.Minute

// 只执行一轮采集并写出 index.html 和 news.json：适合 CI 定时任务。
// 抓取失败只会让报告变少，只有写文件失败才以非零状态退出
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(context.Background(), cfg, zl); err != nil {
		zl.Error("collect failed", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	sources, err := aggregator.Sources(cfg)
	if err != nil {
		return err
	}
	agg, err := aggregator.FromConfig(cfg, sources, zl, nil)
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		rep, stats := agg.BuildReport(ctx)
		if err := render.WriteFiles(cfg.OutputDir, rep); err != nil {
			return err
		}

		fields := []zap.Field{
			zap.String("dir", cfg.OutputDir),
			zap.Int("items", rep.Total),
			zap.Duration("elapsed", stats.Elapsed),
		}
		for name, n := range stats.PerSource {
			fields = append(fields, zap.Int("source."+name, n))
		}
		zl.Info("report written", fields...)
		return nil
	}

	s, err := scheduler.New(cfg.CronSpec, job, runTimeout, zl.Named("scheduler"))
	if err != nil {
		return err
	}
	// 只执行一轮采集任务后退出
	return s.RunOnce(ctx)
}
