package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubFetcher struct {
	items []NewsItem
	err   error
	panic bool
}

func (s stubFetcher) Name() string { return "stub" }

func (s stubFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	if s.panic {
		panic("selector blew up")
	}
	return s.items, s.err
}

func TestCollectDegradesErrorsToEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	got := Collect(context.Background(), stubFetcher{err: errors.New("timeout")}, zap.New(core))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Equal(t, 1, logs.FilterMessage("fetch failed").Len())
	assert.Equal(t, "stub", logs.All()[0].ContextMap()["source"])
}

func TestCollectRecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	got := Collect(context.Background(), stubFetcher{panic: true}, zap.New(core))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("fetch panicked").Len())
}

func TestCollectPassesItemsThrough(t *testing.T) {
	items := []NewsItem{{Title: "a"}, {Title: "b"}}
	assert.Equal(t, items, Collect(context.Background(), stubFetcher{items: items}, nil))
	assert.NotNil(t, Collect(context.Background(), stubFetcher{}, nil))
}

func TestNewPicksStrategy(t *testing.T) {
	f, err := New(SourceConfig{Name: "f", Method: MethodFeed}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &FeedFetcher{}, f)

	f, err = New(SourceConfig{Name: "s", Method: MethodScrape}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &ScrapeFetcher{}, f)

	f, err = New(SourceConfig{Name: "a", Method: MethodAPI}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &APIFetcher{}, f)

	_, err = New(SourceConfig{Name: "x", Method: "ftp"}, Deps{})
	assert.Error(t, err)
}
