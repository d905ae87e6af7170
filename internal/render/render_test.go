package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2026, 2, 22, 20, 5, 0, 0, time.FixedZone("CST", 8*3600))

func sampleReport() Report {
	items := []collector.NewsItem{
		{
			Category:     "油价",
			Title:        "Brent <tops> $90",
			Summary:      "布伦特原油突破90美元",
			Source:       "Oilprice",
			Link:         "https://oilprice.com/a?x=1&y=2",
			RawTime:      "Sun, 22 Feb 2026 10:00:00 GMT",
			ResolvedTime: time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC),
		},
		{Category: "其他", Title: "No link item", Source: "财联社"},
	}
	return NewReport(items, collector.DefaultSources(), generated)
}

func TestHTMLContainsCardsAndEscapes(t *testing.T) {
	out, err := HTML(sampleReport())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "共聚合 2 条新闻")
	assert.Contains(t, html, "最后更新：2026-02-22 20:05")
	assert.Contains(t, html, "Brent &lt;tops&gt; $90")
	assert.Contains(t, html, `href="https://oilprice.com/a?x=1&amp;y=2"`)
	assert.Contains(t, html, "Oilprice · Sun, 22 Feb 2026 10:00:00 GMT")
	assert.Contains(t, html, "background:#fff8e1;color:#f57f17")
	// 未知分类使用默认配色
	assert.Contains(t, html, "background:#eeeeee;color:#333333")
	assert.Contains(t, html, `<h3 class="card-title">No link item</h3>`)
	assert.Contains(t, html, "https://www.cls.cn")
	assert.Contains(t, html, "/api/v1/rebuild")
	assert.NotContains(t, html, "class=\"empty\"")
	assert.NotContains(t, strings.ToLower(html), "github_pat")
	assert.Contains(t, html, "&copy; 2026")
}

func TestHTMLEmptyState(t *testing.T) {
	out, err := HTML(NewReport(nil, collector.DefaultSources(), generated))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "共聚合 0 条新闻")
	assert.Contains(t, html, "暂未获取到新闻，请检查网络后重试。")
	assert.NotContains(t, html, `<article class="card">`)
}

func TestJSONShape(t *testing.T) {
	out, err := JSON(sampleReport())
	require.NoError(t, err)

	var doc struct {
		GeneratedAt time.Time `json:"generatedAt"`
		Total       int       `json:"total"`
		Items       []map[string]any
		Sources     []Source
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.True(t, doc.GeneratedAt.Equal(generated))
	assert.Equal(t, 2, doc.Total)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Sun, 22 Feb 2026 10:00:00 GMT", doc.Items[0]["time"])
	assert.Equal(t, "2026-02-22T10:00:00Z", doc.Items[0]["resolvedTime"])
	_, hasResolved := doc.Items[1]["resolvedTime"]
	assert.False(t, hasResolved, "unknown time is omitted")
	_, hasLink := doc.Items[1]["link"]
	assert.False(t, hasLink)
	assert.Len(t, doc.Sources, 10)
	assert.True(t, strings.Contains(string(out), "Brent <tops> $90"), "json is not html-escaped")
}

func TestNewReportEmptyItemsIsArray(t *testing.T) {
	out, err := JSON(NewReport(nil, nil, generated))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"items": []`)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, WriteFiles(dir, sampleReport()))

	html, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<!DOCTYPE html>")

	js, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)
	assert.True(t, json.Valid(js))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files are cleaned up")
}
