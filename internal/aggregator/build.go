package aggregator

import (
	"fmt"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/enricher"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/metrics"
	"github.com/LJTian/OilNewsHub/internal/translator"
	"github.com/LJTian/OilNewsHub/internal/webclient"
	"go.uber.org/zap"
)

// Sources 返回配置的来源列表：SOURCES_FILE 为空时使用内置列表
func Sources(cfg *config.Config) ([]collector.SourceConfig, error) {
	sources, err := collector.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	return sources, nil
}

// FromConfig 按运行配置装配完整流水线。
// 列表抓取和正文抓取使用不同的超时
func FromConfig(cfg *config.Config, sources []collector.SourceConfig, log *zap.Logger, m *metrics.Metrics) (*Aggregator, error) {
	t := cfg.Tunables
	if t.MaxItemsPerSource == 0 {
		t = config.DefaultTunables()
	}
	log = logger.OrNop(log)

	fetchClient := webclient.New(t.RequestTimeout)
	pageClient := webclient.New(t.PageTimeout).WithBodyLimit(t.MaxPageBytes)

	ext := enricher.New(enricher.Options{
		Client:     pageClient,
		Tunables:   t,
		BrowserURL: cfg.BrowserExtractURL,
		Log:        log.Named("enricher"),
	})
	tr := translator.New(translator.NewWebProvider(translator.WebOptions{
		Client: fetchClient,
		Log:    log.Named("translator"),
	}), t, log.Named("translator"))

	return New(Options{
		Sources: sources,
		Deps: collector.Deps{
			Client: fetchClient,
			Log:    log.Named("collector"),
		},
		Enricher:   ext,
		Translator: tr,
		Tunables:   t,
		Workers:    cfg.FetchWorkers,
		Location:   cfg.Location(),
		Metrics:    m,
		Log:        log,
	})
}
