package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
)

const duckDuckGoLite = "https://lite.duckduckgo.com/lite/"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SearchResult represents a single search result
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// rateLimiter spaces calls at least interval apart.
type rateLimiter struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

func (l *rateLimiter) wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if wait := time.Until(l.last.Add(l.interval)); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	l.last = time.Now()
	return nil
}

// DuckDuckGo queries are limited to one per second across the process.
var duckDuckGoLimit = &rateLimiter{interval: time.Second}

// WebSearcher scrapes the DuckDuckGo lite HTML page.
type WebSearcher struct {
	client     *http.Client
	endpoint   string
	maxResults int
	limiter    *rateLimiter
	maxBackoff time.Duration
}

func NewWebSearcher(maxResults int) *WebSearcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearcher{
		client:     &http.Client{Timeout: 15 * time.Second},
		endpoint:   duckDuckGoLite,
		maxResults: maxResults,
		limiter:    duckDuckGoLimit,
		maxBackoff: 30 * time.Second,
	}
}

// Search returns the top results for query formatted as numbered text.
func (s *WebSearcher) Search(ctx context.Context, query string) (string, error) {
	results, err := s.Results(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %s", query), nil
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (s *WebSearcher) Results(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if err := s.limiter.wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	var resp *http.Response
	delay := time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("duckduckgo request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		slog.Warn("DuckDuckGo rate limited, backing off", "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < s.maxBackoff {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	results, err := parseLiteResults(string(body), s.maxResults)
	if err != nil {
		return nil, err
	}
	slog.Info("Web search complete", "query", query, "results", len(results))
	return results, nil
}

// parseLiteResults walks the lite page. Result links carry class
// "result-link" and snippets live in a td with class "result-snippet", in
// the same order.
func parseLiteResults(content string, maxResults int) ([]SearchResult, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var (
		links    []SearchResult
		snippets []string
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				links = append(links, SearchResult{
					Title: textContent(n),
					URL:   resolveRedirect(attr(n, "href")),
				})
			case n.Data == "td" && hasClass(n, "result-snippet"):
				snippets = append(snippets, textContent(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var results []SearchResult
	for i, r := range links {
		if r.URL == "" || r.Title == "" {
			continue
		}
		if i < len(snippets) {
			r.Snippet = snippets[i]
		}
		results = append(results, r)
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=<url> links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}
