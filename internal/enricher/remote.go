package enricher

import (
	"context"
	"errors"
	"net/url"

	"github.com/LJTian/OilNewsHub/internal/collector"
)

type browserRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

type browserResponse struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// fromBrowser 调用 browser-scraper 渲染 JS 页面后提取正文
func (e *Extractor) fromBrowser(ctx context.Context, link string) (string, error) {
	var resp browserResponse
	req := browserRequest{URL: link, MaxChars: e.t.ParagraphGoal * 5}
	if err := e.client.PostJSON(ctx, e.browserURL, req, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", errors.New("browser: " + resp.Error)
	}
	return e.acceptLong(collector.CleanText(resp.Text)), nil
}

// fromSearch 从 DuckDuckGo HTML 搜索结果的摘要片段拼出描述，适用于 JS 渲染的页面
func (e *Extractor) fromSearch(ctx context.Context, link string) (string, error) {
	q := url.Values{}
	q.Set("q", stripQuery(link))
	doc, err := e.client.GetDocument(ctx, e.searchURL+"?"+q.Encode())
	if err != nil {
		return "", err
	}
	text := e.collectTexts(doc.Find(".result__snippet"))
	if text == "" {
		return "", errNoText
	}
	return text, nil
}
