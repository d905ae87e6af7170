package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	RedisAddr string

	CronSpec string

	// 保护 POST /api/v1/rebuild，未配置时重建接口关闭
	BasicAuthUser string
	BasicAuthPass string

	OutputDir   string
	SourcesFile string
	LogLevel    string

	// 可选：cmd/browser-scraper 的 /extract 地址，为空则不启用浏览器兜底
	BrowserExtractURL string
	// cmd/browser-scraper 监听端口
	BrowserPort string

	// 报告展示时区，API 来源的时间戳按此时区格式化
	ReportTimezone string

	FetchWorkers int

	Tunables Tunables
}

// Tunables 汇总流水线中的阈值常量，集中放置便于测试和调整
type Tunables struct {
	MaxItemsPerSource int
	RequestTimeout    time.Duration
	PageTimeout       time.Duration
	// 文章页和搜索页响应体上限
	MaxPageBytes    int
	FreshnessWindow time.Duration

	TranslateBatchBudget int
	MinTranslatedLen     int
	ChineseDensity       float64

	UselessSummaryLen int
	TitleEchoPrefix   int

	MaxTitleLen   int
	MaxSummaryLen int
	APITitleLen   int
	MinMetaLen    int
	MinParagraph  int
	ParagraphGoal int
	EnrichWorkers int
}

// DefaultTunables 返回经验调优得到的默认阈值
func DefaultTunables() Tunables {
	return Tunables{
		MaxItemsPerSource: 5,
		RequestTimeout:    15 * time.Second,
		PageTimeout:       10 * time.Second,
		MaxPageBytes:      2 << 20,
		FreshnessWindow:   14 * 24 * time.Hour,

		TranslateBatchBudget: 4500,
		MinTranslatedLen:     10,
		ChineseDensity:       0.2,

		UselessSummaryLen: 150,
		TitleEchoPrefix:   30,

		MaxTitleLen:   80,
		MaxSummaryLen: 500,
		APITitleLen:   60,
		MinMetaLen:    30,
		MinParagraph:  40,
		ParagraphGoal: 400,
		EnrichWorkers: 6,
	}
}

func Load() *Config {
	// .env 不存在时静默忽略，环境变量优先
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "9000"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		CronSpec:          getEnv("CRON_SPEC", "0 */2 * * *"),
		BasicAuthUser:     getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:     getEnv("APP_BASIC_PASS", ""),
		OutputDir:         getEnv("OUTPUT_DIR", "docs"),
		SourcesFile:       getEnv("SOURCES_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		BrowserExtractURL: getEnv("BROWSER_EXTRACT_URL", ""),
		BrowserPort:       getEnv("BROWSER_PORT", "4000"),
		ReportTimezone:    getEnv("REPORT_TIMEZONE", "UTC"),
		FetchWorkers:      getEnvInt("FETCH_WORKERS", 6),
		Tunables:          DefaultTunables(),
	}
	return cfg
}

// Location 解析报告时区，无法识别时回退到 UTC
func (c *Config) Location() *time.Location {
	if c.ReportTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
