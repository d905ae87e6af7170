package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	text string
	err  error
	got  string
}

func (f *fakeRenderer) Text(ctx context.Context, url string) (string, error) {
	f.got = url
	return f.text, f.err
}

func post(t *testing.T, r renderer, body string) (int, extractResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := gin.New()
	(&extractHandler{render: r, log: zap.NewNop()}).register(e)

	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var resp extractResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, resp
}

func TestExtractReturnsTruncatedText(t *testing.T) {
	f := &fakeRenderer{text: "\r\n" + strings.Repeat("油", 50) + "\n\n\n\nend"}
	code, resp := post(t, f, `{"url":"https://example.com/a","maxChars":20}`)
	if code != http.StatusOK || !resp.OK {
		t.Fatalf("unexpected response %d %+v", code, resp)
	}
	if f.got != "https://example.com/a" {
		t.Fatalf("renderer got url %q", f.got)
	}
	if n := utf8.RuneCountInString(resp.Text); n != 20 {
		t.Fatalf("expected 20 runes, got %d", n)
	}
	if !strings.HasSuffix(resp.Text, "…") {
		t.Fatalf("expected ellipsis, got %q", resp.Text)
	}
}

func TestExtractValidatesRequest(t *testing.T) {
	if code, _ := post(t, &fakeRenderer{}, `not json`); code != http.StatusBadRequest {
		t.Fatalf("invalid json: got %d", code)
	}
	if code, resp := post(t, &fakeRenderer{}, `{"maxChars":10}`); code != http.StatusBadRequest || resp.Error != "url is required" {
		t.Fatalf("missing url: got %d %+v", code, resp)
	}
}

func TestExtractReportsFailuresInBody(t *testing.T) {
	code, resp := post(t, &fakeRenderer{err: errors.New("net::ERR_NAME_NOT_RESOLVED")}, `{"url":"https://nowhere.invalid"}`)
	if code != http.StatusOK || resp.OK || resp.Error == "" {
		t.Fatalf("unexpected response %d %+v", code, resp)
	}

	code, resp = post(t, &fakeRenderer{text: " \n\n "}, `{"url":"https://example.com"}`)
	if code != http.StatusOK || resp.OK || resp.Error != "empty content" {
		t.Fatalf("unexpected response %d %+v", code, resp)
	}
}

func TestTrimWhitespace(t *testing.T) {
	got := trimWhitespace("  a\r\nb\r\n\r\n\r\n\r\nc  ")
	if got != "a\nb\n\nc" {
		t.Fatalf("got %q", got)
	}
}
