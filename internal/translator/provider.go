package translator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/LJTian/OilNewsHub/internal/fallback"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/webclient"
	"go.uber.org/zap"
)

const (
	defaultGoogleURL   = "https://translate.googleapis.com/translate_a/single"
	defaultMyMemoryURL = "https://api.mymemory.translated.net/get"

	// MyMemory 免费接口对单次查询长度有限制
	translateMaxLen = 500
)

// WebProvider 依次尝试 Google Translate 公开接口（client=gtx）和 MyMemory
type WebProvider struct {
	client      *webclient.Client
	googleURL   string
	myMemoryURL string
	log         *zap.Logger
}

type WebOptions struct {
	Client      *webclient.Client
	GoogleURL   string
	MyMemoryURL string
	Log         *zap.Logger
}

func NewWebProvider(opts WebOptions) *WebProvider {
	if opts.Client == nil {
		opts.Client = webclient.New(0)
	}
	if opts.GoogleURL == "" {
		opts.GoogleURL = defaultGoogleURL
	}
	if opts.MyMemoryURL == "" {
		opts.MyMemoryURL = defaultMyMemoryURL
	}
	opts.Log = logger.OrNop(opts.Log)
	return &WebProvider{
		client:      opts.Client,
		googleURL:   opts.GoogleURL,
		myMemoryURL: opts.MyMemoryURL,
		log:         opts.Log,
	}
}

func (p *WebProvider) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	ok := 0
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.translate(ctx, text)
		if out[i] != "" {
			ok++
		}
	}
	if ok == 0 && len(texts) > 0 {
		return nil, ErrEmptyResult
	}
	return out, nil
}

// translate 两个接口都失败时返回空串
func (p *WebProvider) translate(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if rs := []rune(text); len(rs) > translateMaxLen {
		text = string(rs[:translateMaxLen])
	}

	chain := &fallback.Chain[string]{
		Accept: fallback.NonEmptyString,
		OnFailure: func(name string, err error) {
			p.log.Debug("translate provider failed", zap.String("provider", name), zap.Error(err))
		},
	}
	chain.Then("google-gtx", func(ctx context.Context) (string, error) {
		return p.viaGoogle(ctx, text)
	})
	chain.Then("mymemory", func(ctx context.Context) (string, error) {
		return p.viaMyMemory(ctx, text)
	})
	out, _, err := chain.Do(ctx)
	if err != nil {
		return ""
	}
	return out
}

// viaGoogle 响应格式: [[["翻译文本","原文",...],...],...]
func (p *WebProvider) viaGoogle(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", "zh-CN")
	q.Set("dt", "t")
	q.Set("q", text)

	var raw []any
	if err := p.client.GetJSON(ctx, p.googleURL+"?"+q.Encode(), &raw); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", ErrEmptyResult
	}
	outer, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("google-gtx: unexpected response shape")
	}
	var b strings.Builder
	for _, seg := range outer {
		pair, ok := seg.([]any)
		if !ok || len(pair) < 1 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			b.WriteString(s)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func (p *WebProvider) viaMyMemory(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("langpair", sourceLang(text)+"|zh")
	q.Set("q", text)

	var out struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := p.client.GetJSON(ctx, p.myMemoryURL+"?"+q.Encode(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.ResponseData.TranslatedText), nil
}

// sourceLang MyMemory 不支持 auto，含假名时按日文处理，其余按英文
func sourceLang(s string) string {
	for _, r := range s {
		if r >= 0x3040 && r <= 0x309f || r >= 0x30a0 && r <= 0x30ff {
			return "ja"
		}
	}
	return "en"
}
