// Package webclient is the shared outbound HTTP client: browser-like headers,
// redirects followed, a hard per-request timeout and no retries.
package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	// UserAgent is sent on every request; several sources block generic bots.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// AcceptLanguage prefers English with Chinese as a fallback.
	AcceptLanguage = "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7"

	// DefaultBodyLimit caps every response body; larger bodies are an error.
	DefaultBodyLimit = 4 << 20

	maxRedirects   = 10
	defaultTimeout = 15 * time.Second
)

// Client wraps a resty client configured for scraping.
type Client struct {
	rc *resty.Client
}

// New returns a client with the given timeout; zero means 15s. Bodies are
// limited to DefaultBodyLimit.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept-Language", AcceptLanguage).
		SetResponseBodyLimit(DefaultBodyLimit)
	return &Client{rc: rc}
}

// WithBodyLimit 修改响应体上限，返回同一个 client
func (c *Client) WithBodyLimit(n int) *Client {
	if n > 0 {
		c.rc.SetResponseBodyLimit(n)
	}
	return c
}

// Get fetches url and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Method: "GET", URL: url, Code: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// GetDocument fetches url and parses it as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// GetJSON fetches url and decodes a 2xx JSON body into out. The body is
// decoded regardless of the Content-Type the server claims.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// PostForm posts form-encoded data and returns the 2xx body.
func (c *Client) PostForm(ctx context.Context, url string, form map[string]string) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).SetFormData(form).Post(url)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Method: "POST", URL: url, Code: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// PostJSON posts body as JSON and decodes the 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{Method: "POST", URL: url, Code: resp.StatusCode()}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}
