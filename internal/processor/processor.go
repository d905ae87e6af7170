package processor

import (
	"sort"
	"time"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/LJTian/OilNewsHub/internal/timeparse"
)

// CapPerSource 每个来源最多保留 limit 条，按到达顺序计数，防止电报流占比过大
func CapPerSource(items []collector.NewsItem, limit int) []collector.NewsItem {
	counts := make(map[string]int)
	out := make([]collector.NewsItem, 0, len(items))
	for _, it := range items {
		counts[it.Source]++
		if counts[it.Source] <= limit {
			out = append(out, it)
		}
	}
	return out
}

// ResolveTimes 就地把每条的 RawTime 解析为 ResolvedTime，无法解析时保持零值
func ResolveTimes(items []collector.NewsItem, p timeparse.Parser) {
	for i := range items {
		if t, ok := p.Parse(items[i].RawTime); ok {
			items[i].ResolvedTime = t
		} else {
			items[i].ResolvedTime = time.Time{}
		}
	}
}

// ApplyFreshness 丢弃早于 now-window 的条目；恰好等于边界的保留，时间未知的保留
func ApplyFreshness(items []collector.NewsItem, now time.Time, window time.Duration) []collector.NewsItem {
	cutoff := now.Add(-window)
	out := make([]collector.NewsItem, 0, len(items))
	for _, it := range items {
		if it.TimeKnown() && it.ResolvedTime.Before(cutoff) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SortByTime 稳定排序：有时间的按时间降序在前，无时间的排在最后
func SortByTime(items []collector.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.TimeKnown() != b.TimeKnown() {
			return a.TimeKnown()
		}
		if !a.TimeKnown() {
			return false
		}
		return a.ResolvedTime.After(b.ResolvedTime)
	})
}
