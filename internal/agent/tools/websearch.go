package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultSearchEndpoint = "https://www.googleapis.com/customsearch/v1"
	searchResultCount     = 5
)

// WebSearch queries the Google Custom Search JSON API.
type WebSearch struct {
	apiKey   string
	engineID string
	endpoint string
	client   *http.Client
}

type WebSearchOption func(*WebSearch)

// WithSearchEndpoint points the client at a different API root.
func WithSearchEndpoint(endpoint string) WebSearchOption {
	return func(w *WebSearch) { w.endpoint = endpoint }
}

func WithSearchHTTPClient(client *http.Client) WebSearchOption {
	return func(w *WebSearch) { w.client = client }
}

func NewWebSearch(apiKey, engineID string, opts ...WebSearchOption) *WebSearch {
	w := &WebSearch{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: DefaultSearchEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Search returns one "title: snippet" line per hit. Like every tool it reports
// failures in the text.
func (w *WebSearch) Search(ctx context.Context, query string) (string, error) {
	if w.apiKey == "" {
		return "Web search unavailable: search API key not configured.", nil
	}
	out, err := w.search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error searching the web: %v", err), nil
	}
	return out, nil
}

func (w *WebSearch) search(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("key", w.apiKey)
	q.Set("cx", w.engineID)
	q.Set("q", query)
	q.Set("num", fmt.Sprint(searchResultCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		// The request URL carries the API key.
		var ue *url.Error
		if errors.As(err, &ue) {
			return "", ue.Err
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("search API returned %d: %s", resp.StatusCode, msg)
	}

	items := gjson.GetBytes(body, "items").Array()
	if len(items) == 0 {
		return "No good Google Search Result was found", nil
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Get("title").String())
		snippet := strings.Join(strings.Fields(item.Get("snippet").String()), " ")
		lines = append(lines, fmt.Sprintf("- %s: %s", title, snippet))
	}
	return strings.Join(lines, "\n"), nil
}
