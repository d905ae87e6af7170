package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/LJTian/OilNewsHub/internal/webclient"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// ScrapeFetcher 抓取一个新闻列表页，按配置的选择器解析条目
type ScrapeFetcher struct {
	cfg  SourceConfig
	deps Deps
}

func NewScrapeFetcher(cfg SourceConfig, deps Deps) *ScrapeFetcher {
	return &ScrapeFetcher{cfg: cfg, deps: deps.withDefaults()}
}

func (s *ScrapeFetcher) Name() string {
	return s.cfg.Name
}

func (s *ScrapeFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	c := colly.NewCollector(
		colly.UserAgent(webclient.UserAgent),
		colly.StdlibContext(ctx),
		colly.MaxBodySize(webclient.DefaultBodyLimit),
	)
	c.SetRequestTimeout(s.deps.Tunables.RequestTimeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", webclient.AcceptLanguage)
	})

	var (
		results []NewsItem
		parsed  bool
	)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if parsed {
			return
		}
		parsed = true
		results = s.parseListing(e.DOM)
	})

	if err := c.Visit(s.cfg.URL); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.cfg.Name, err)
	}
	if !parsed {
		return nil, fmt.Errorf("scrape %s: %w: response was not HTML", s.cfg.Name, ErrNoEntries)
	}
	return results, nil
}

// parseListing 页面结构可能调整：配置的容器选择器没有命中时，
// 退化为"所有带可见文本的链接"作为条目列表
func (s *ScrapeFetcher) parseListing(root *goquery.Selection) []NewsItem {
	limit := s.deps.Tunables.MaxItemsPerSource
	sel := s.cfg.Selectors

	var containers []*goquery.Selection
	degraded := false
	if sel.Article != "" {
		root.Find(sel.Article).EachWithBreak(func(_ int, art *goquery.Selection) bool {
			containers = append(containers, art)
			return len(containers) < limit
		})
	}
	if len(containers) == 0 {
		degraded = true
		root.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.TrimSpace(a.Text()) == "" {
				return true
			}
			containers = append(containers, a)
			return len(containers) < limit
		})
	}

	out := make([]NewsItem, 0, len(containers))
	for _, art := range containers {
		if it, ok := s.parseContainer(art, degraded); ok {
			out = append(out, it)
		}
	}
	return out
}

func (s *ScrapeFetcher) parseContainer(art *goquery.Selection, degraded bool) (NewsItem, bool) {
	sel := s.cfg.Selectors
	t := s.deps.Tunables

	titleEl := art
	if !degraded && !isAnchor(art) {
		titleEl = findFirst(art, sel.Title)
	}
	if titleEl == nil {
		return NewsItem{}, false
	}
	title := CleanText(titleEl.Text())
	if title == "" {
		return NewsItem{}, false
	}

	var href string
	if isAnchor(titleEl) {
		href, _ = titleEl.Attr("href")
	} else if a := titleEl.Find("a").First(); a.Length() > 0 {
		href, _ = a.Attr("href")
	}

	it := NewsItem{
		Category: s.cfg.Category,
		Title:    Truncate(title, t.MaxTitleLen),
		Source:   s.cfg.Name,
		Link:     resolveURL(s.cfg.URL, href),
	}
	if degraded || isAnchor(art) {
		return it, true
	}
	if el := findFirst(art, sel.Summary); el != nil {
		it.Summary = Truncate(CleanText(el.Text()), t.MaxSummaryLen)
	}
	if el := findFirst(art, sel.Time); el != nil {
		it.RawTime = CleanText(el.Text())
	}
	return it, true
}

func findFirst(s *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return nil
	}
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return found
}

func isAnchor(s *goquery.Selection) bool {
	return goquery.NodeName(s) == "a"
}

// resolveURL 把相对链接解析为基于来源地址的绝对地址
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
