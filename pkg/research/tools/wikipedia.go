package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikeboe/research-assistant/pkg/splitter"
)

const wikipediaUserAgent = "research-assistant/1.0 (https://github.com/mikeboe/research-assistant)"

const noWikipediaResult = "No good Wikipedia Search Result was found"

// Wikipedia looks up article extracts through the MediaWiki API.
type Wikipedia struct {
	client   *http.Client
	endpoint string
	splitter *splitter.TextSplitter
}

func NewWikipedia(lang string, maxChars int) *Wikipedia {
	if lang == "" {
		lang = "en"
	}
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &Wikipedia{
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang),
		splitter: splitter.NewRecursiveCharacterTextSplitter(maxChars, 0),
	}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// Lookup finds the best matching article for query and returns its title
// and plain-text extract, truncated to the configured size.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("query is empty")
	}

	var search wikiSearchResponse
	err := w.get(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"format":   {"json"},
	}, &search)
	if err != nil {
		return "", err
	}
	if len(search.Query.Search) == 0 {
		return noWikipediaResult, nil
	}
	title := search.Query.Search[0].Title

	var extract wikiExtractResponse
	err = w.get(ctx, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
		"format":      {"json"},
	}, &extract)
	if err != nil {
		return "", err
	}

	for _, page := range extract.Query.Pages {
		if page.Missing != nil || strings.TrimSpace(page.Extract) == "" {
			continue
		}
		summary, cut, err := w.splitter.Truncate(strings.TrimSpace(page.Extract))
		if err != nil {
			return "", fmt.Errorf("failed to truncate extract: %w", err)
		}
		slog.Info("Wikipedia lookup complete", "query", query, "title", page.Title, "truncated", cut)
		return fmt.Sprintf("Page: %s\nSummary: %s", page.Title, summary), nil
	}
	return noWikipediaResult, nil
}

func (w *Wikipedia) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", wikipediaUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned non-200 status code: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}
