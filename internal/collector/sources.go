package collector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// googleNewsSite 构造 Google News 站内搜索 RSS，作为各站点自有 RSS 的备用
func googleNewsSite(query string) string {
	return "https://news.google.com/rss/search?q=" + query + "&hl=en&gl=US&ceid=US:en"
}

// DefaultSources 返回内置的十个油气新闻来源
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:     "CNBC",
			Category: "国际",
			Method:   MethodFeed,
			URL:      "https://www.cnbc.com/id/19836768/device/rss/rss.html",
			Homepage: "https://cnbc.com/energy",
		},
		{
			Name:     "Bloomberg",
			Category: "财经",
			Method:   MethodFeed,
			URL:      googleNewsSite("site:bloomberg.com+energy+oil+gas"),
			Homepage: "https://bloomberg.com/energy",
		},
		{
			Name:     "S&P Platts",
			Category: "市场",
			Method:   MethodFeed,
			URL:      googleNewsSite("site:spglobal.com+platts+oil+gas+energy"),
			Homepage: "https://spglobal.com/platts",
		},
		{
			Name:     "OGJ",
			Category: "行业",
			Method:   MethodFeed,
			URL:      "https://www.ogj.com/rss",
			AltURLs:  []string{googleNewsSite("site:ogj.com+oil+gas")},
			Homepage: "https://ogj.com",
		},
		{
			Name:     "Rigzone",
			Category: "行业",
			Method:   MethodFeed,
			URL:      "https://www.rigzone.com/news/rss/rigzone_latest.aspx",
			AltURLs:  []string{googleNewsSite("site:rigzone.com")},
			Homepage: "https://rigzone.com",
		},
		{
			Name:     "Oilprice",
			Category: "油价",
			Method:   MethodFeed,
			URL:      "https://oilprice.com/rss/main",
			AltURLs:  []string{googleNewsSite("site:oilprice.com")},
			Homepage: "https://oilprice.com",
		},
		{
			Name:     "NGI",
			Category: "天然气",
			Method:   MethodFeed,
			URL:      "https://www.naturalgasintel.com/feed/",
			AltURLs:  []string{googleNewsSite("site:naturalgasintel.com")},
			Homepage: "https://naturalgasintel.com",
		},
		{
			Name:     "World Oil",
			Category: "行业",
			Method:   MethodFeed,
			URL:      "https://www.worldoil.com/rss",
			AltURLs:  []string{googleNewsSite("site:worldoil.com+oil+gas")},
			Homepage: "https://worldoil.com",
		},
		{
			Name:     "OilGasPress",
			Category: "综合",
			Method:   MethodScrape,
			URL:      "https://oilandgaspress.com/news-analysis/",
			Selectors: Selectors{
				Article: ".qode-news-item",
				Title:   "h4.entry-title a, p.entry-title a, .qode-post-title a",
				Summary: ".qode-post-excerpt-holder",
				Time:    ".qode-post-info-date",
			},
			Homepage: "https://oilandgaspress.com/news-analysis/",
		},
		{
			// 财联社电报流：接口不做数量限制，由全局关键字过滤后再截取
			Name:     "财联社",
			Category: "财经",
			Method:   MethodAPI,
			URL:      "https://www.cls.cn/nodeapi/telegraphList?app=CailianpressWeb&os=web&sv=8.4.6&rn=200",
			Homepage: "https://www.cls.cn",
		},
	}
}

// LoadSources 读取 YAML 来源文件；path 为空时返回内置列表
func LoadSources(path string) ([]SourceConfig, error) {
	if path == "" {
		return DefaultSources(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}
	var doc struct {
		Sources []SourceConfig `yaml:"sources"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse sources %s: %w", path, err)
	}
	if err := ValidateSources(doc.Sources); err != nil {
		return nil, fmt.Errorf("sources %s: %w", path, err)
	}
	return doc.Sources, nil
}

// ValidateSources 检查名称唯一、抓取方式合法以及网页抓取的必要选择器
func ValidateSources(sources []SourceConfig) error {
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	seen := make(map[string]struct{}, len(sources))
	for i, s := range sources {
		if s.Name == "" {
			return fmt.Errorf("source #%d: name is required", i+1)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		switch s.Method {
		case MethodFeed, MethodAPI:
		case MethodScrape:
			if s.Selectors.Article == "" || s.Selectors.Title == "" {
				return fmt.Errorf("source %q: scrape needs article and title selectors", s.Name)
			}
		default:
			return fmt.Errorf("source %q: unknown method %q", s.Name, s.Method)
		}
	}
	return nil
}
