package enricher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const paragraphSelector = "article p, .content p, .entry-content p, .articleHeader ~ p, main p, p"

type fetchedPage struct {
	body []byte
	doc  *goquery.Document
	err  error
}

func (e *Extractor) fetchPage(ctx context.Context, link string) *fetchedPage {
	body, err := e.client.Get(ctx, link)
	if err != nil {
		return &fetchedPage{err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return &fetchedPage{err: fmt.Errorf("parse %s: %w", link, err)}
	}
	return &fetchedPage{body: body, doc: doc}
}

// fromDocument 依次尝试 og:description、meta description 和正文段落。
// meta 足够长时直接返回；否则与段落拼接结果比较取较长者
func (e *Extractor) fromDocument(doc *goquery.Document) string {
	best := ""
	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		desc := metaContent(doc, sel)
		if !e.metaAccepted(desc) {
			continue
		}
		if collector.RuneLen(desc) >= e.t.UselessSummaryLen {
			return desc
		}
		best = desc
		break
	}

	if combined := e.collectTexts(doc.Find(paragraphSelector)); collector.RuneLen(combined) > collector.RuneLen(best) {
		return combined
	}
	return best
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return collector.CleanText(v)
}

func (e *Extractor) metaAccepted(s string) bool {
	return collector.RuneLen(s) > e.t.MinMetaLen && !isRejected(s)
}

// collectTexts 拼接足够长的文本块，凑够目标长度即停
func (e *Extractor) collectTexts(sel *goquery.Selection) string {
	var (
		parts []string
		total int
	)
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collector.CleanText(s.Text())
		n := collector.RuneLen(text)
		if n <= e.t.MinParagraph || isRejected(text) {
			return true
		}
		parts = append(parts, text)
		total += n
		return total < e.t.ParagraphGoal
	})
	return strings.Join(parts, " ")
}

// fromReadability 用 readability 提取正文，适合没有 meta 也没有规整段落的页面
func (e *Extractor) fromReadability(body []byte, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability %s: %w", link, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", err
	}
	text := e.collectTexts(doc.Find("p"))
	if text == "" {
		text = collector.CleanText(doc.Text())
	}
	return e.acceptLong(text), nil
}

// acceptLong 接受长度超过段落下限的文本，并在句子边界处截到目标长度
func (e *Extractor) acceptLong(text string) string {
	if collector.RuneLen(text) <= e.t.MinParagraph || isRejected(text) {
		return ""
	}
	return trimToSentence(text, e.t.ParagraphGoal)
}

var sentenceEnds = []string{". ", "。", "! ", "? ", "！", "？"}

// trimToSentence 截到 limit 个字符以内，尽量停在后半段的句子结尾
func trimToSentence(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	cut := string(rs[:limit])
	best := -1
	for _, end := range sentenceEnds {
		if i := strings.LastIndex(cut, end); i >= 0 && i+len(end) > best {
			best = i + len(end)
		}
	}
	if best > 0 && collector.RuneLen(cut[:best]) >= limit/2 {
		return strings.TrimSpace(cut[:best])
	}
	return cut
}
