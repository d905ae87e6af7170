package aggregator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LJTian/OilNewsHub/internal/collector"
	"github.com/LJTian/OilNewsHub/internal/config"
	"github.com/LJTian/OilNewsHub/internal/metrics"
)

func TestSourcesDefaultsWithoutFile(t *testing.T) {
	got, err := Sources(&config.Config{})
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(got) != len(collector.DefaultSources()) {
		t.Fatalf("expected built-in sources, got %d", len(got))
	}
}

func TestSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	doc := `sources:
  - name: Example
    category: 国际
    method: feed
    url: https://example.com/rss
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Sources(&config.Config{SourcesFile: path})
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Example" {
		t.Fatalf("unexpected sources: %+v", got)
	}

	if _, err := Sources(&config.Config{SourcesFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromConfigBuildsEveryStage(t *testing.T) {
	cfg := &config.Config{
		FetchWorkers:   3,
		ReportTimezone: "Asia/Shanghai",
		Tunables:       config.DefaultTunables(),
	}
	a, err := FromConfig(cfg, collector.DefaultSources(), nil, metrics.New(nil))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(a.fetchers) != len(collector.DefaultSources()) {
		t.Fatalf("fetchers = %d", len(a.fetchers))
	}
	if a.enricher == nil || a.translator == nil {
		t.Fatalf("enricher and translator must be wired")
	}
	if a.workers != 3 {
		t.Fatalf("workers = %d", a.workers)
	}
	if a.parser.Location.String() != "Asia/Shanghai" {
		t.Fatalf("location = %v", a.parser.Location)
	}
}
