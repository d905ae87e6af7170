package collector

import (
	"bytes"
	"context"
	"fmt"

	"github.com/LJTian/OilNewsHub/internal/fallback"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// FeedFetcher 通过 RSS/Atom 抓取；主地址失败或为空时依次尝试备用地址
type FeedFetcher struct {
	cfg  SourceConfig
	deps Deps
}

func NewFeedFetcher(cfg SourceConfig, deps Deps) *FeedFetcher {
	return &FeedFetcher{cfg: cfg, deps: deps.withDefaults()}
}

func (f *FeedFetcher) Name() string {
	return f.cfg.Name
}

func (f *FeedFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	chain := &fallback.Chain[[]*gofeed.Item]{
		Accept: fallback.NonEmptySlice[*gofeed.Item],
		OnFailure: func(candidate string, err error) {
			f.deps.Log.Debug("feed candidate failed",
				zap.String("source", f.cfg.Name),
				zap.String("url", candidate),
				zap.Error(err))
		},
	}
	for _, u := range f.cfg.Candidates() {
		chain.Then(u, func(ctx context.Context) ([]*gofeed.Item, error) {
			return f.fetchEntries(ctx, u)
		})
	}

	entries, used, err := chain.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w: %w", f.cfg.Name, ErrNoEntries, err)
	}
	if used != f.cfg.URL {
		f.deps.Log.Info("feed served by fallback", zap.String("source", f.cfg.Name), zap.String("url", used))
	}

	limit := f.deps.Tunables.MaxItemsPerSource
	if len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]NewsItem, 0, len(entries))
	for _, e := range entries {
		if it, ok := f.toItem(e); ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *FeedFetcher) fetchEntries(ctx context.Context, url string) ([]*gofeed.Item, error) {
	body, err := f.deps.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return feed.Items, nil
}

func (f *FeedFetcher) toItem(e *gofeed.Item) (NewsItem, bool) {
	title := CleanText(e.Title)
	if title == "" {
		return NewsItem{}, false
	}

	summary := e.Description
	if summary == "" {
		summary = e.Content
	}

	pub := e.Published
	if pub == "" {
		pub = e.Updated
	}

	t := f.deps.Tunables
	return NewsItem{
		Category: f.cfg.Category,
		Title:    Truncate(title, t.MaxTitleLen),
		Summary:  Truncate(CleanText(summary), t.MaxSummaryLen),
		Source:   f.cfg.Name,
		Link:     e.Link,
		RawTime:  pub,
	}, true
}
