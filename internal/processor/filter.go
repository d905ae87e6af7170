package processor

import (
	"strings"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/cloudflare/ahocorasick"
)

// DefaultKeywords 油气相关关键字，英文和中文混排，匹配时不区分大小写
var DefaultKeywords = []string{
	"oil", "oil price", "petrol", "petrol price",
	"crude", "brent", "wti", "opec",
	"lng", "lpg", "shale",
	"石油", "石油产量", "石油价格",
	"天然气", "natural gas",
	"页岩油", "shale oil",
	"原油", "油价", "燃气", "成品油",
	"炼油", "汽油", "柴油", "液化气",
	"油田", "油气", "石油管道", "天然气管道",
}

// KeywordFilter 用 Aho-Corasick 自动机一次扫描判断是否命中任一关键字
type KeywordFilter struct {
	keywords []string
	matcher  *ahocorasick.Matcher
}

// NewKeywordFilter 构建自动机。包含其他关键字的长关键字不影响"是否命中"，建树前去掉
func NewKeywordFilter(keywords []string) *KeywordFilter {
	norm := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		norm = append(norm, kw)
	}

	minimal := make([]string, 0, len(norm))
	for _, kw := range norm {
		covered := false
		for _, other := range norm {
			if other != kw && strings.Contains(kw, other) {
				covered = true
				break
			}
		}
		if !covered {
			minimal = append(minimal, kw)
		}
	}

	f := &KeywordFilter{keywords: minimal}
	if len(minimal) > 0 {
		f.matcher = ahocorasick.NewStringMatcher(minimal)
	}
	return f
}

// Match 标题或摘要中包含至少一个关键字时返回 true
func (f *KeywordFilter) Match(it collector.NewsItem) bool {
	if f.matcher == nil {
		return false
	}
	text := strings.ToLower(it.Title + " " + it.Summary)
	return f.matcher.Contains([]byte(text))
}

// Filter 保持原顺序返回命中的条目
func (f *KeywordFilter) Filter(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
