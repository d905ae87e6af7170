package main

import (
	"context"
	"log"

	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/chromedp/chromedp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 为正文补全提供 JS 渲染页面的提取服务：POST /extract
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// 整个进程复用一个 headless 实例
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 预热浏览器，避免首个请求耗时过长
	if err := chromedp.Run(browserCtx); err != nil {
		zl.Warn("warmup chromedp failed", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	h := &extractHandler{render: chromeRenderer{ctx: browserCtx}, log: zl}
	h.register(r)

	addr := ":" + cfg.BrowserPort
	zl.Info("browser-scraper listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zl.Fatal("http server error", zap.Error(err))
	}
}
