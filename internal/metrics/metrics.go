// Package metrics holds the Prometheus instruments for the news pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oilnews"

// Metrics 所有方法对 nil 接收者安全，未配置指标时直接跳过
type Metrics struct {
	SourceItems    *prometheus.GaugeVec
	StageItems     *prometheus.GaugeVec
	EnrichTotal    *prometheus.CounterVec
	TranslateTotal *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	RunsTotal      *prometheus.CounterVec
	LastSuccess    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New 在 reg 上注册指标；reg 为 nil 时新建独立的 Registry
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		SourceItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "source_items",
			Help:      "Items returned by each source in the last run",
		}, []string{"source"}),
		StageItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_items",
			Help:      "Items remaining after each pipeline stage in the last run",
		}, []string{"stage"}),
		EnrichTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "items_total",
			Help:      "Summary enrichment attempts by outcome",
		}, []string{"outcome"}),
		TranslateTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translate",
			Name:      "items_total",
			Help:      "Summary translations by outcome",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full aggregation run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Aggregation runs by status",
		}, []string{"status"}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		gatherer: reg,
	}
}

func (m *Metrics) SetSourceItems(source string, n int) {
	if m == nil {
		return
	}
	m.SourceItems.WithLabelValues(source).Set(float64(n))
}

func (m *Metrics) SetStage(stage string, n int) {
	if m == nil {
		return
	}
	m.StageItems.WithLabelValues(stage).Set(float64(n))
}

func (m *Metrics) AddEnrich(needed, improved int) {
	if m == nil {
		return
	}
	m.EnrichTotal.WithLabelValues("improved").Add(float64(improved))
	m.EnrichTotal.WithLabelValues("unchanged").Add(float64(needed - improved))
}

func (m *Metrics) AddTranslate(candidates, translated int) {
	if m == nil {
		return
	}
	m.TranslateTotal.WithLabelValues("translated").Add(float64(translated))
	m.TranslateTotal.WithLabelValues("kept").Add(float64(candidates - translated))
}

// ObserveRun 记录一次运行的耗时和结果
func (m *Metrics) ObserveRun(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.RunsTotal.WithLabelValues("error").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.LastSuccess.SetToCurrentTime()
}

// Handler 返回 /metrics 的处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
