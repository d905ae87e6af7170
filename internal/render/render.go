// Package render turns an aggregation result into the static report: an HTML
// page and a JSON document with the same content.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LJTian/OilNewsHub/internal/collector"
)

const (
	HTMLFile = "index.html"
	JSONFile = "news.json"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

type badgeColor struct{ BG, FG string }

// 分类徽章配色，未列出的分类用灰色
var categoryColors = map[string]badgeColor{
	"国际":  {"#fce4ec", "#c62828"},
	"财经":  {"#fff3e0", "#e65100"},
	"市场":  {"#e8eaf6", "#283593"},
	"行业":  {"#e8f5e9", "#2e7d32"},
	"油价":  {"#fff8e1", "#f57f17"},
	"天然气": {"#e0f7fa", "#00695c"},
	"综合":  {"#f3e5f5", "#6a1b9a"},
}

var defaultBadge = badgeColor{"#eeeeee", "#333333"}

var page = template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
	"badge": func(cat string) badgeColor {
		if c, ok := categoryColors[cat]; ok {
			return c
		}
		return defaultBadge
	},
	"stamp": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}).ParseFS(templateFS, "templates/index.html.tmpl"))

// Source 是报告中来源列表的一项
type Source struct {
	Name     string `json:"name"`
	Homepage string `json:"homepage"`
}

// Report 是一次运行的完整输出
type Report struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Total       int                  `json:"total"`
	Items       []collector.NewsItem `json:"items"`
	Sources     []Source             `json:"sources"`
}

// NewReport 组装报告，GeneratedAt 会转换到报告时区
func NewReport(items []collector.NewsItem, sources []collector.SourceConfig, at time.Time) Report {
	if items == nil {
		items = []collector.NewsItem{}
	}
	src := make([]Source, 0, len(sources))
	for _, s := range sources {
		home := s.Homepage
		if home == "" {
			home = s.URL
		}
		src = append(src, Source{Name: s.Name, Homepage: home})
	}
	return Report{GeneratedAt: at, Total: len(items), Items: items, Sources: src}
}

// WriteHTML 渲染 HTML 页面
func WriteHTML(w io.Writer, r Report) error {
	if err := page.Execute(w, r); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// WriteJSON 输出与页面内容一致的 JSON
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}

// HTML 和 JSON 返回渲染好的字节，供缓存和接口直接使用
func HTML(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func JSON(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFiles 把 index.html 和 news.json 写入 dir；先写临时文件再改名，避免读到半个文件
func WriteFiles(dir string, r Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	htmlBytes, err := HTML(r)
	if err != nil {
		return err
	}
	jsonBytes, err := JSON(r)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, HTMLFile), htmlBytes); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, JSONFile), jsonBytes)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
