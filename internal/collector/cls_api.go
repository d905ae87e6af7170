package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// APIFetcher 通过财联社 nodeapi 获取电报流。
// 电报流条目多、噪音大，这里不限制数量，交给全局关键字过滤和来源限流
type APIFetcher struct {
	cfg  SourceConfig
	deps Deps
}

func NewAPIFetcher(cfg SourceConfig, deps Deps) *APIFetcher {
	return &APIFetcher{cfg: cfg, deps: deps.withDefaults()}
}

func (a *APIFetcher) Name() string {
	return a.cfg.Name
}

// 对应 telegraphList 的响应结构
type clsResponse struct {
	Data struct {
		RollData []clsItem `json:"roll_data"`
	} `json:"data"`
}

type clsItem struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	// depth_extends 有时是对象，有时是空数组或 null
	DepthExtends json.RawMessage `json:"depth_extends"`
	ShareURL     string          `json:"shareurl"`
	CTime        epochSeconds    `json:"ctime"`
}

func (it clsItem) depthTitle() string {
	raw := bytes.TrimSpace(it.DepthExtends)
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}
	var depth struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &depth); err != nil {
		return ""
	}
	return depth.Title
}

// epochSeconds 兼容数字和字符串两种写法
type epochSeconds int64

func (e *epochSeconds) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*e = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("ctime %q: %w", s, err)
	}
	*e = epochSeconds(n)
	return nil
}

func (a *APIFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	var data clsResponse
	if err := a.deps.Client.GetJSON(ctx, a.cfg.URL, &data); err != nil {
		return nil, fmt.Errorf("api %s: %w", a.cfg.Name, err)
	}

	results := make([]NewsItem, 0, len(data.Data.RollData))
	for _, raw := range data.Data.RollData {
		if it, ok := a.toItem(raw); ok {
			results = append(results, it)
		}
	}
	return results, nil
}

func (a *APIFetcher) toItem(raw clsItem) (NewsItem, bool) {
	t := a.deps.Tunables

	content := CleanText(raw.Content)
	title := CleanText(raw.Title)
	depthTitle := CleanText(raw.depthTitle())

	// 标题优先用深度文章标题，其次 title，最后取正文前若干字
	display := depthTitle
	if display == "" {
		display = title
	}
	if display == "" {
		display = Prefix(content, t.APITitleLen)
	}
	if display == "" {
		return NewsItem{}, false
	}

	// 正文和标题相同时不重复放进摘要
	summary := ""
	if content != display {
		summary = Truncate(content, t.MaxSummaryLen)
	}

	pub := ""
	if raw.CTime != 0 {
		pub = time.Unix(int64(raw.CTime), 0).In(a.deps.Location).Format("2006-01-02 15:04")
	}

	return NewsItem{
		Category: a.cfg.Category,
		Title:    Truncate(display, t.MaxTitleLen),
		Summary:  summary,
		Source:   a.cfg.Name,
		Link:     raw.ShareURL,
		RawTime:  pub,
	}, true
}
