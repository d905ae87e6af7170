package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/chromedp/chromedp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultMaxChars = 2000
	maxMaxChars     = 8000
	pageTimeout     = 20 * time.Second
)

type extractRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

type extractResponse struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// renderer 打开页面并返回渲染后的正文文本
type renderer interface {
	Text(ctx context.Context, url string) (string, error)
}

type chromeRenderer struct {
	ctx context.Context
}

// Text 每个请求开一个新标签页，共用同一个浏览器
func (c chromeRenderer) Text(ctx context.Context, url string) (string, error) {
	tab, cancelTab := chromedp.NewContext(c.ctx)
	defer cancelTab()
	tab, cancel := context.WithTimeout(tab, pageTimeout)
	defer cancel()
	// 请求方断开时同时结束渲染
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var text string
	err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(extractJS, &text),
	)
	return text, err
}

type extractHandler struct {
	render renderer
	log    *zap.Logger
}

func (h *extractHandler) register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/extract", h.extract)
}

func (h *extractHandler) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, extractResponse{Error: "invalid json"})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, extractResponse{Error: "url is required"})
		return
	}
	if req.MaxChars <= 0 || req.MaxChars > maxMaxChars {
		req.MaxChars = defaultMaxChars
	}

	text, err := h.render.Text(c.Request.Context(), req.URL)
	if err != nil {
		h.log.Warn("extract failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusOK, extractResponse{Error: err.Error()})
		return
	}

	text = trimWhitespace(text)
	if text == "" {
		c.JSON(http.StatusOK, extractResponse{Error: "empty content"})
		return
	}
	c.JSON(http.StatusOK, extractResponse{OK: true, Text: collector.Truncate(text, req.MaxChars)})
}

// trimWhitespace 统一换行并压缩连续空行
func trimWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

// extractJS 优先在常见正文容器中取文本，找不到时遍历全页较长段落
const extractJS = `(function () {
  var selectors = [
    "article",
    "[itemprop='articleBody']",
    "div.article-body",
    "div.article-content",
    "div#article-content",
    "div.story-body",
    "div#content",
    "div.main-content",
    "div.content",
    "main"
  ];

  var text = "";
  for (var i = 0; i < selectors.length; i++) {
    var el = document.querySelector(selectors[i]);
    text = el ? (el.innerText || "").trim() : "";
    if (text.length > 200) break;
  }

  if (text.length < 200) {
    var nodes = Array.prototype.slice.call(document.querySelectorAll("p"));
    var pieces = [];
    var total = 0;
    for (var j = 0; j < nodes.length; j++) {
      var t = (nodes[j].innerText || "").trim();
      if (t.length >= 40) {
        pieces.push(t);
        total += t.length;
      }
      if (total > 4000) break;
    }
    text = pieces.join("\n\n");
  }

  return text.replace(/\s+\n/g, "\n").trim();
})();`
