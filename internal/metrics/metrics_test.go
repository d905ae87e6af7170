package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.SetSourceItems("CNBC", 3)
	m.SetStage("filtered", 1)
	m.AddEnrich(2, 1)
	m.AddTranslate(2, 1)
	m.ObserveRun(time.Second, nil)
	assert.NotNil(t, m.Handler())
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetSourceItems("CNBC", 4)
	m.SetStage("capped", 7)
	m.AddEnrich(3, 2)
	m.AddTranslate(5, 4)
	m.ObserveRun(2*time.Second, nil)
	m.ObserveRun(time.Second, errors.New("write failed"))

	body := scrape(t, m)
	for _, want := range []string{
		`oilnews_fetch_source_items{source="CNBC"} 4`,
		`oilnews_pipeline_stage_items{stage="capped"} 7`,
		`oilnews_enrich_items_total{outcome="improved"} 2`,
		`oilnews_enrich_items_total{outcome="unchanged"} 1`,
		`oilnews_translate_items_total{outcome="kept"} 1`,
		`oilnews_pipeline_runs_total{status="ok"} 1`,
		`oilnews_pipeline_runs_total{status="error"} 1`,
		`oilnews_pipeline_run_duration_seconds_count 2`,
	} {
		assert.Contains(t, body, want)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// 每个实例使用独立 Registry，重复创建不会 panic
	a := New(nil)
	b := New(nil)
	a.SetStage("fetched", 1)
	b.SetStage("fetched", 2)
	assert.Contains(t, scrape(t, a), `oilnews_pipeline_stage_items{stage="fetched"} 1`)
	assert.Contains(t, scrape(t, b), `oilnews_pipeline_stage_items{stage="fetched"} 2`)
}
