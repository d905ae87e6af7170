package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<div class="qode-news-item">
  <h4 class="entry-title"><a href="/2026/02/opec-output">OPEC+ keeps output steady</a></h4>
  <div class="qode-post-excerpt-holder"><p>Ministers agreed to extend cuts.</p></div>
  <div class="qode-post-info-date">February 21, 2026</div>
</div>
<div class="qode-news-item">
  <p class="entry-title"><a href="https://other.example.com/shale">Shale drillers pull back</a></p>
</div>
<div class="qode-news-item">
  <h4 class="entry-title"><a href="/empty">   </a></h4>
</div>
</body></html>`

var oilGasSelectors = Selectors{
	Article: ".qode-news-item",
	Title:   "h4.entry-title a, p.entry-title a",
	Summary: ".qode-post-excerpt-holder",
	Time:    ".qode-post-info-date",
}

func parseHTML(t *testing.T, s string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc.Selection
}

func TestScrapeParseListingWithSelectors(t *testing.T) {
	s := NewScrapeFetcher(SourceConfig{
		Name:      "OilGasPress",
		Category:  "综合",
		Method:    MethodScrape,
		URL:       "https://oilandgaspress.com/news-analysis/",
		Selectors: oilGasSelectors,
	}, Deps{})

	items := s.parseListing(parseHTML(t, listingHTML))
	require.Len(t, items, 2)

	assert.Equal(t, "OPEC+ keeps output steady", items[0].Title)
	assert.Equal(t, "https://oilandgaspress.com/2026/02/opec-output", items[0].Link)
	assert.Equal(t, "Ministers agreed to extend cuts.", items[0].Summary)
	assert.Equal(t, "February 21, 2026", items[0].RawTime)
	assert.Equal(t, "综合", items[0].Category)

	assert.Equal(t, "Shale drillers pull back", items[1].Title)
	assert.Equal(t, "https://other.example.com/shale", items[1].Link)
	assert.Empty(t, items[1].Summary)
	assert.Empty(t, items[1].RawTime)
}

func TestScrapeParseListingDegradesToAnchors(t *testing.T) {
	page := `<html><body><nav><a href="/"> </a></nav>
<a href="news/1">Crude stocks fall</a>
<a href="news/2">Refinery outage in Texas</a>
<a href="news/3">LNG exports hit record</a>
<a href="news/4">Diesel margins widen</a>
<a href="news/5">Gas storage report</a>
<a href="news/6">Sixth link is beyond the cap</a>
</body></html>`

	s := NewScrapeFetcher(SourceConfig{
		Name:      "Redesigned",
		Method:    MethodScrape,
		URL:       "https://example.com/list/",
		Selectors: oilGasSelectors,
	}, Deps{})

	items := s.parseListing(parseHTML(t, page))
	require.Len(t, items, 5)
	assert.Equal(t, "Crude stocks fall", items[0].Title)
	assert.Equal(t, "https://example.com/list/news/1", items[0].Link)
	for _, it := range items {
		assert.Empty(t, it.Summary)
		assert.Empty(t, it.RawTime)
	}
}

func TestScrapeFetchOverHTTP(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	f := NewScrapeFetcher(SourceConfig{
		Name:      "Local",
		Method:    MethodScrape,
		URL:       srv.URL + "/news-analysis/",
		Selectors: oilGasSelectors,
	}, Deps{})

	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, srv.URL+"/2026/02/opec-output", items[0].Link)
	assert.Contains(t, gotLang, "en-US")
}

func TestScrapeFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewScrapeFetcher(SourceConfig{Name: "Blocked", Method: MethodScrape, URL: srv.URL, Selectors: oilGasSelectors}, Deps{})
	items, err := f.Fetch(context.Background())
	assert.Error(t, err)
	assert.Nil(t, items)
}

func TestResolveURL(t *testing.T) {
	base := "https://oilandgaspress.com/news-analysis/"
	assert.Equal(t, "https://oilandgaspress.com/a/b", resolveURL(base, "/a/b"))
	assert.Equal(t, "https://oilandgaspress.com/news-analysis/c", resolveURL(base, "c"))
	assert.Equal(t, "https://x.com/y", resolveURL(base, "https://x.com/y"))
	assert.Equal(t, "", resolveURL(base, "  "))
}
