package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/webclient"
	"go.uber.org/zap"
)

// NewsItem 统一采集后的基础结构，在流水线各阶段中按顺序就地更新
type NewsItem struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Link     string `json:"link,omitempty"`
	// RawTime 保留来源给出的原始时间文本
	RawTime string `json:"time,omitempty"`
	// ResolvedTime 零值表示时间未知；由聚合阶段统一解析一次
	ResolvedTime time.Time `json:"resolvedTime,omitzero"`
}

// TimeKnown 报告 ResolvedTime 是否可信
func (n NewsItem) TimeKnown() bool {
	return !n.ResolvedTime.IsZero()
}

// Method 标识一个来源的抓取方式
type Method string

const (
	MethodFeed   Method = "feed"
	MethodScrape Method = "scrape"
	MethodAPI    Method = "api"
)

// Selectors 为网页抓取配置 CSS 选择器
type Selectors struct {
	Article string `yaml:"article"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Time    string `yaml:"time"`
}

// SourceConfig 描述一个新闻来源；进程启动时确定，之后只读
type SourceConfig struct {
	Name      string    `yaml:"name"`
	Category  string    `yaml:"category"`
	Method    Method    `yaml:"method"`
	URL       string    `yaml:"url"`
	AltURLs   []string  `yaml:"alt_urls,omitempty"`
	Selectors Selectors `yaml:"selectors,omitempty"`
	// Homepage 仅用于报告中的来源列表
	Homepage string `yaml:"homepage,omitempty"`
}

// Candidates 返回主地址加备用地址，按尝试顺序排列
func (s SourceConfig) Candidates() []string {
	out := make([]string, 0, 1+len(s.AltURLs))
	out = append(out, s.URL)
	out = append(out, s.AltURLs...)
	return out
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]NewsItem, error)
}

// ErrNoEntries 表示来源可达但没有可用条目
var ErrNoEntries = errors.New("no entries")

// Deps 是各抓取策略共享的依赖
type Deps struct {
	Client   *webclient.Client
	Tunables config.Tunables
	// Location 用于把 API 返回的时间戳格式化为本地时间文本
	Location *time.Location
	Log      *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Tunables.MaxItemsPerSource == 0 {
		d.Tunables = config.DefaultTunables()
	}
	if d.Client == nil {
		d.Client = webclient.New(d.Tunables.RequestTimeout)
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	d.Log = logger.OrNop(d.Log)
	return d
}

// New 根据来源配置构造对应的抓取策略
func New(cfg SourceConfig, deps Deps) (Fetcher, error) {
	deps = deps.withDefaults()
	switch cfg.Method {
	case MethodFeed:
		return NewFeedFetcher(cfg, deps), nil
	case MethodScrape:
		return NewScrapeFetcher(cfg, deps), nil
	case MethodAPI:
		return NewAPIFetcher(cfg, deps), nil
	default:
		return nil, fmt.Errorf("source %q: unknown method %q", cfg.Name, cfg.Method)
	}
}

// Collect 执行一次抓取并吞掉所有错误：失败只记录日志并返回空列表，
// 保证单个来源的问题不会影响整体聚合
func Collect(ctx context.Context, f Fetcher, log *zap.Logger) (items []NewsItem) {
	log = logger.OrNop(log)
	name := f.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("fetch panicked", zap.String("source", name), zap.Any("panic", r))
			items = []NewsItem{}
		}
	}()

	got, err := f.Fetch(ctx)
	if err != nil {
		log.Warn("fetch failed",
			zap.String("source", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return []NewsItem{}
	}
	if got == nil {
		got = []NewsItem{}
	}
	log.Info("fetch done",
		zap.String("source", name),
		zap.Int("count", len(got)),
		zap.Duration("elapsed", time.Since(start)))
	return got
}
