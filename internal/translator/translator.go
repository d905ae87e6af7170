package translator

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"go.uber.org/zap"
)

// ErrEmptyResult 表示整批没有任何一条翻译成功
var ErrEmptyResult = errors.New("translator: empty result")

// Provider 翻译一批文本，返回与输入等长、顺序一致的结果；单条失败时对应位置为空串
type Provider interface {
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
}

// IsChinese 粗略判断文本是否已经是中文：汉字占比超过 density。空文本视为中文
func IsChinese(s string, density float64) bool {
	if s == "" {
		return true
	}
	han := 0
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			han++
		}
	}
	return float64(han)/float64(utf8.RuneCountInString(s)) > density
}

// Batches 按字符预算贪心分批，保持顺序；加入某条会超预算时先结束当前批。
// 单条超预算的文本独占一批，文本不会被拆开
func Batches(texts []string, budget int) [][]string {
	idx := batchIndices(texts, budget)
	out := make([][]string, len(idx))
	for b, batch := range idx {
		out[b] = make([]string, len(batch))
		for k, i := range batch {
			out[b][k] = texts[i]
		}
	}
	return out
}

func batchIndices(texts []string, budget int) [][]int {
	var (
		out   [][]int
		cur   []int
		count int
	)
	for i, t := range texts {
		n := utf8.RuneCountInString(t)
		if len(cur) > 0 && count+n > budget {
			out = append(out, cur)
			cur, count = nil, 0
		}
		cur = append(cur, i)
		count += n
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Result 统计一次翻译
type Result struct {
	Candidates    int
	Translated    int
	Batches       int
	FailedBatches int
}

// Translator 把非中文摘要翻译成简体中文
type Translator struct {
	provider Provider
	t        config.Tunables
	log      *zap.Logger
}

func New(p Provider, t config.Tunables, log *zap.Logger) *Translator {
	if t.TranslateBatchBudget == 0 {
		t = config.DefaultTunables()
	}
	log = logger.OrNop(log)
	return &Translator{provider: p, t: t, log: log}
}

// TranslateSummaries 就地替换摘要；整批失败只记录日志，该批摘要保持原文，不重试
func (tr *Translator) TranslateSummaries(ctx context.Context, items []collector.NewsItem) Result {
	var (
		idx   []int
		texts []string
	)
	for i, it := range items {
		if it.Summary != "" && !IsChinese(it.Summary, tr.t.ChineseDensity) {
			idx = append(idx, i)
			texts = append(texts, it.Summary)
		}
	}
	res := Result{Candidates: len(idx)}
	if len(idx) == 0 {
		return res
	}
	tr.log.Info("translating summaries", zap.Int("total", len(idx)))

	for _, batch := range batchIndices(texts, tr.t.TranslateBatchBudget) {
		res.Batches++
		in := make([]string, len(batch))
		for k, j := range batch {
			in[k] = texts[j]
		}
		out, err := tr.provider.TranslateBatch(ctx, in)
		if err != nil {
			res.FailedBatches++
			tr.log.Warn("translate batch failed", zap.Int("size", len(in)), zap.Error(err))
			continue
		}
		for k, j := range batch {
			if k >= len(out) {
				break
			}
			result := strings.TrimSpace(out[k])
			if utf8.RuneCountInString(result) > tr.t.MinTranslatedLen {
				items[idx[j]].Summary = collector.Truncate(result, tr.t.MaxSummaryLen)
				res.Translated++
			}
		}
	}
	tr.log.Info("translate done", zap.Int("kept", res.Translated), zap.Int("total", res.Candidates))
	return res
}
