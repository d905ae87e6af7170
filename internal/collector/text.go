package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const ellipsis = "…"

// CleanText 去掉 HTML 标签、解码实体并压缩空白
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style, noscript").Remove()
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Truncate 按 rune 截断，结果（含省略号）不超过 limit 个字符，避免中文被截成半个字
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit-1]) + ellipsis
}

// RuneLen 返回字符数而非字节数
func RuneLen(s string) int {
	return len([]rune(s))
}

// Prefix 返回前 n 个字符，不加省略号
func Prefix(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
