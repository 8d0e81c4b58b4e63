// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package search implements the web search tool used by the research agent.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the JavaScript free DuckDuckGo results page.
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

// Result is a single web search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// DuckDuckGo searches the web by scraping the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	endpoint   string
	client     *http.Client
	limiter    *rate.Limiter
	maxResults int
	userAgent  string
}

var _ Searcher = (*DuckDuckGo)(nil)

// Option configures a [DuckDuckGo] searcher.
type Option func(*DuckDuckGo)

// WithEndpoint overrides the results page URL.
func WithEndpoint(endpoint string) Option {
	return func(d *DuckDuckGo) {
		d.endpoint = endpoint
	}
}

// WithHTTPClient sets the HTTP client used for searches.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DuckDuckGo) {
		d.client = c
	}
}

// WithMaxResults caps the number of results returned per search.
func WithMaxResults(n int) Option {
	return func(d *DuckDuckGo) {
		if n > 0 {
			d.maxResults = n
		}
	}
}

// WithRateLimit limits searches to r per second with the given burst.
// A non-positive r disables rate limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(d *DuckDuckGo) {
		if r <= 0 {
			d.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		d.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// NewDuckDuckGo creates a new DuckDuckGo searcher.
func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	d := &DuckDuckGo{
		endpoint:   DefaultEndpoint,
		client:     &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		maxResults: 5,
		userAgent:  "Mozilla/5.0 (compatible; research-agent/1.0)",
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Search implements [Searcher].
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search: query is required")
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search: rate limit: %w", err)
	}

	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("search: invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("duckduckgo search error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	results, err := ParseResults(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duckduckgo response: %w", err)
	}
	if len(results) > d.maxResults {
		results = results[:d.maxResults]
	}
	return results, nil
}

// ParseResults extracts organic results from a DuckDuckGo HTML results page.
// Sponsored results are skipped.
func ParseResults(r io.Reader) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result--ad"):
				return
			case n.Data == "a" && hasClass(n, "result__a"):
				results = append(results, Result{
					Title: textContent(n),
					URL:   resolveLink(attr(n, "href")),
				})
				return
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = textContent(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return slices.DeleteFunc(results, func(r Result) bool { return r.URL == "" }), nil
}

// resolveLink unwraps DuckDuckGo redirect links of the form //duckduckgo.com/l/?uddg=<target>.
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && u.Host != "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

// textContent returns the whitespace normalized text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
