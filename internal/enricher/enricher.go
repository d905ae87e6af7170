// Package enricher fetches a better summary for items whose feed summary is
// empty, too short or just an echo of the title.
package enricher

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/fallback"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/pool"
	"github.com/LJTian/OilNewsHub/internal/webclient"
	"go.uber.org/zap"
)

const (
	defaultSearchURL     = "https://html.duckduckgo.com/html/"
	defaultGoogleNewsURL = "https://news.google.com"
)

// 这两类文本出现在 Google News 中转页和 JS 拦截页，不能当摘要
var rejectPhrases = []string{
	"comprehensive up-to-date news coverage",
	"please enable js",
}

var errNoText = errors.New("no usable text")

// Options 配置各级抓取；零值使用公网默认地址
type Options struct {
	Client   *webclient.Client
	Tunables config.Tunables
	// BrowserURL 指向 browser-scraper 的 /extract 接口，为空时跳过这一级
	BrowserURL    string
	SearchURL     string
	GoogleNewsURL string
	Log           *zap.Logger
}

// Extractor 按固定顺序逐级尝试获取文章正文摘要
type Extractor struct {
	client     *webclient.Client
	t          config.Tunables
	browserURL string
	searchURL  string
	gnews      *googleNewsResolver
	log        *zap.Logger
}

func New(opts Options) *Extractor {
	if opts.Tunables.MaxSummaryLen == 0 {
		opts.Tunables = config.DefaultTunables()
	}
	if opts.Client == nil {
		opts.Client = webclient.New(opts.Tunables.PageTimeout).WithBodyLimit(opts.Tunables.MaxPageBytes)
	}
	if opts.SearchURL == "" {
		opts.SearchURL = defaultSearchURL
	}
	if opts.GoogleNewsURL == "" {
		opts.GoogleNewsURL = defaultGoogleNewsURL
	}
	opts.Log = logger.OrNop(opts.Log)
	return &Extractor{
		client:     opts.Client,
		t:          opts.Tunables,
		browserURL: opts.BrowserURL,
		searchURL:  opts.SearchURL,
		gnews:      &googleNewsResolver{client: opts.Client, base: strings.TrimRight(opts.GoogleNewsURL, "/"), log: opts.Log},
		log:        opts.Log,
	}
}

// NeedsEnrichment 使用默认阈值判断摘要是否无用
func NeedsEnrichment(title, summary string) bool {
	return needsEnrichment(title, summary, config.DefaultTunables())
}

// 摘要为空、过短，或者只是标题的重复（Google News RSS 常见"标题 + 来源名"）
func needsEnrichment(title, summary string, t config.Tunables) bool {
	if summary == "" || collector.RuneLen(summary) < t.UselessSummaryLen {
		return true
	}
	s := strings.ToLower(strings.TrimSpace(summary))
	prefix := collector.Prefix(strings.ToLower(strings.TrimSpace(title)), t.TitleEchoPrefix)
	return strings.HasPrefix(s, prefix)
}

// Result 统计一次补全
type Result struct {
	Needed   int
	Improved int
}

// Enrich 并发为需要补全的条目抓取摘要，就地更新；没有链接的条目不处理
func (e *Extractor) Enrich(ctx context.Context, items []collector.NewsItem, width int) Result {
	var idx []int
	for i, it := range items {
		if it.Link != "" && needsEnrichment(it.Title, it.Summary, e.t) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return Result{}
	}
	e.log.Info("enriching summaries", zap.Int("total", len(idx)))

	texts := pool.Map(ctx, width, idx, func(ctx context.Context, i int) string {
		return e.Extract(ctx, items[i].Link)
	})

	res := Result{Needed: len(idx)}
	for k, i := range idx {
		if collector.RuneLen(texts[k]) > collector.RuneLen(items[i].Summary) {
			items[i].Summary = collector.Truncate(texts[k], e.t.MaxSummaryLen)
		}
		if !needsEnrichment(items[i].Title, items[i].Summary, e.t) {
			res.Improved++
		}
	}
	e.log.Info("enrich done", zap.Int("kept", res.Improved), zap.Int("total", res.Needed))
	return res
}

// Extract 返回文章的最佳摘要文本；所有方式都失败时返回空串
func (e *Extractor) Extract(ctx context.Context, link string) string {
	target := e.gnews.Resolve(ctx, link)

	// 页面只抓一次，meta/段落和 readability 两级共用
	var page *fetchedPage
	loadPage := func(ctx context.Context) (*fetchedPage, error) {
		if page != nil {
			return page, page.err
		}
		page = e.fetchPage(ctx, target)
		return page, page.err
	}

	chain := &fallback.Chain[string]{
		Accept: fallback.NonEmptyString,
		OnFailure: func(name string, err error) {
			e.log.Debug("extract tier failed", zap.String("tier", name), zap.String("url", target), zap.Error(err))
		},
	}
	chain.Then("page", func(ctx context.Context) (string, error) {
		p, err := loadPage(ctx)
		if err != nil {
			return "", err
		}
		return e.fromDocument(p.doc), nil
	})
	chain.Then("readability", func(ctx context.Context) (string, error) {
		p, err := loadPage(ctx)
		if err != nil {
			return "", err
		}
		return e.fromReadability(p.body, target)
	})
	if e.browserURL != "" {
		chain.Then("browser", func(ctx context.Context) (string, error) {
			return e.fromBrowser(ctx, target)
		})
	}
	chain.Then("search", func(ctx context.Context) (string, error) {
		return e.fromSearch(ctx, target)
	})

	text, tier, err := chain.Do(ctx)
	if err != nil {
		return ""
	}
	e.log.Debug("extract ok", zap.String("tier", tier), zap.String("url", target))
	return text
}

func isRejected(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range rejectPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// stripQuery 去掉查询参数，搜索引擎对带跟踪参数的地址命中率很低
func stripQuery(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		if i := strings.IndexByte(link, '?'); i >= 0 {
			return link[:i]
		}
		return link
	}
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String()
}
