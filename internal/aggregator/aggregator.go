// Package aggregator runs one full collection pass: fetch every source,
// filter, cap, enrich, translate, resolve times, drop stale items and sort.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/enricher"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/metrics"
	"github.com/LJTian/OilNewsHub/internal/pool"
	"github.com/LJTian/OilNewsHub/internal/processor"
	"github.com/LJTian/OilNewsHub/internal/render"
	"github.com/LJTian/OilNewsHub/internal/timeparse"
	"github.com/LJTian/OilNewsHub/internal/translator"
	"go.uber.org/zap"
)

// Enricher 为弱摘要补全正文
type Enricher interface {
	Enrich(ctx context.Context, items []collector.NewsItem, width int) enricher.Result
}

// Translator 把非中文摘要翻译为中文
type Translator interface {
	TranslateSummaries(ctx context.Context, items []collector.NewsItem) translator.Result
}

type Options struct {
	Sources    []collector.SourceConfig
	Deps       collector.Deps
	Filter     *processor.KeywordFilter
	Enricher   Enricher
	Translator Translator
	Tunables   config.Tunables
	// Workers 同时抓取的来源数和同时补全的条目数
	Workers  int
	Location *time.Location
	Now      func() time.Time
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// Stats 记录每个阶段之后剩余的条目数
type Stats struct {
	PerSource map[string]int
	Fetched   int
	Filtered  int
	Capped    int
	Enrich    enricher.Result
	Translate translator.Result
	Fresh     int
	Elapsed   time.Duration
}

type Aggregator struct {
	sources    []collector.SourceConfig
	location   *time.Location
	fetchers   []collector.Fetcher
	filter     *processor.KeywordFilter
	enricher   Enricher
	translator Translator
	t          config.Tunables
	workers    int
	parser     timeparse.Parser
	now        func() time.Time
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func New(opts Options) (*Aggregator, error) {
	if opts.Tunables.MaxItemsPerSource == 0 {
		opts.Tunables = config.DefaultTunables()
	}
	if opts.Workers <= 0 {
		opts.Workers = opts.Tunables.EnrichWorkers
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Log = logger.OrNop(opts.Log)
	if opts.Filter == nil {
		opts.Filter = processor.NewKeywordFilter(processor.DefaultKeywords)
	}

	deps := opts.Deps
	deps.Tunables = opts.Tunables
	deps.Location = opts.Location
	if deps.Log == nil {
		deps.Log = opts.Log
	}

	fetchers := make([]collector.Fetcher, 0, len(opts.Sources))
	for _, s := range opts.Sources {
		f, err := collector.New(s, deps)
		if err != nil {
			return nil, fmt.Errorf("aggregator: %w", err)
		}
		fetchers = append(fetchers, f)
	}

	return &Aggregator{
		sources:    opts.Sources,
		location:   opts.Location,
		fetchers:   fetchers,
		filter:     opts.Filter,
		enricher:   opts.Enricher,
		translator: opts.Translator,
		t:          opts.Tunables,
		workers:    opts.Workers,
		parser:     timeparse.Parser{Location: opts.Location},
		now:        opts.Now,
		metrics:    opts.Metrics,
		log:        opts.Log,
	}, nil
}

// Run 执行一次完整聚合。任何阶段都不会失败，结果可能为空但不为 nil
func (a *Aggregator) Run(ctx context.Context) ([]collector.NewsItem, Stats) {
	start := time.Now()
	stats := Stats{PerSource: make(map[string]int, len(a.fetchers))}

	items := a.fetchAll(ctx, &stats)
	stats.Fetched = len(items)
	a.metrics.SetStage("fetched", stats.Fetched)

	items = a.filter.Filter(items)
	stats.Filtered = len(items)
	a.metrics.SetStage("filtered", stats.Filtered)
	a.log.Info("keyword filter", zap.Int("kept", stats.Filtered), zap.Int("total", stats.Fetched))

	items = processor.CapPerSource(items, a.t.MaxItemsPerSource)
	stats.Capped = len(items)
	a.metrics.SetStage("capped", stats.Capped)
	if stats.Capped < stats.Filtered {
		a.log.Info("per-source cap", zap.Int("kept", stats.Capped), zap.Int("total", stats.Filtered))
	}

	if a.enricher != nil {
		stats.Enrich = a.enricher.Enrich(ctx, items, a.workers)
		a.metrics.AddEnrich(stats.Enrich.Needed, stats.Enrich.Improved)
	}
	if a.translator != nil {
		stats.Translate = a.translator.TranslateSummaries(ctx, items)
		a.metrics.AddTranslate(stats.Translate.Candidates, stats.Translate.Translated)
	}

	processor.ResolveTimes(items, a.parser)
	before := len(items)
	items = processor.ApplyFreshness(items, a.now(), a.t.FreshnessWindow)
	stats.Fresh = len(items)
	a.metrics.SetStage("fresh", stats.Fresh)
	if stats.Fresh < before {
		a.log.Info("freshness filter", zap.Int("kept", stats.Fresh), zap.Int("total", before))
	}

	processor.SortByTime(items)
	stats.Elapsed = time.Since(start)
	a.log.Info("aggregate done", zap.Int("count", len(items)), zap.Duration("elapsed", stats.Elapsed))
	return items, stats
}

// BuildReport 执行一轮聚合并组装报告，生成时间使用报告时区
func (a *Aggregator) BuildReport(ctx context.Context) (render.Report, Stats) {
	items, stats := a.Run(ctx)
	return render.NewReport(items, a.sources, a.now().In(a.location)), stats
}

func (a *Aggregator) fetchAll(ctx context.Context, stats *Stats) []collector.NewsItem {
	results := make([][]collector.NewsItem, len(a.fetchers))
	_ = pool.Run(ctx, a.workers, len(a.fetchers), func(ctx context.Context, i int) error {
		results[i] = collector.Collect(ctx, a.fetchers[i], a.log)
		return nil
	})

	var all []collector.NewsItem
	for i, got := range results {
		name := a.fetchers[i].Name()
		stats.PerSource[name] = len(got)
		a.metrics.SetSourceItems(name, len(got))
		all = append(all, got...)
	}
	if all == nil {
		all = []collector.NewsItem{}
	}
	return all
}
