package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/everything"

	// MaxPageSize is the upstream per-page maximum.
	MaxPageSize = 100

	// maxResults is the upstream search-window cap; requesting pages past
	// it returns an error instead of articles.
	maxResults = 100
)

// NewsAPIClient queries the newsapi.org everything endpoint for articles
// matching a ticker symbol within a lookback window.
type NewsAPIClient struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewNewsAPIClient(apiKey string, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

// Fetch issues exactly one request for a single page of results. It never
// retries; callers classify failures with Retryable and decide themselves.
func (c *NewsAPIClient) Fetch(ticker string, window time.Duration, page, pageSize int) ([]Article, int, error) {
	if c.apiKey == "" {
		return nil, 0, &ConfigError{Reason: "NEWS_API_KEY is not set"}
	}
	if ticker == "" {
		return nil, 0, &ConfigError{Reason: "ticker must not be empty"}
	}
	if window <= 0 {
		return nil, 0, &ConfigError{Reason: "lookback window must be positive"}
	}
	if page < 1 {
		return nil, 0, &ConfigError{Reason: "page must be >= 1"}
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, 0, &ConfigError{Reason: fmt.Sprintf("pageSize must be between 1 and %d", MaxPageSize)}
	}

	to := time.Now().UTC()
	from := to.Add(-window)

	params := url.Values{}
	params.Set("q", ticker)
	params.Set("from", from.Format(time.RFC3339))
	params.Set("to", to.Format(time.RFC3339))
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("page", fmt.Sprint(page))
	params.Set("pageSize", fmt.Sprint(pageSize))
	params.Set("apiKey", c.apiKey)

	resp, err := c.httpClient.Get(newsAPIEndpoint + "?" + params.Encode())
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var raw newsAPIResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, &ParseError{Err: err}
	}

	if raw.Status != "ok" {
		return nil, 0, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("%s: %s", raw.Code, raw.Message),
		}
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		articles = append(articles, Article{
			ExternalID:  HashURL(item.URL),
			Headline:    item.Title,
			Detail:      item.Description,
			Author:      item.Author,
			Content:     item.Content,
			URL:         item.URL,
			Publisher:   item.Source.Name,
			PublishedAt: publishedAt,
			Symbols:     []string{ticker},
			Source:      c.Name(),
		})
	}

	return articles, raw.TotalResults, nil
}

// FetchTicker pages through results until the caller's limit or the
// upstream total is exhausted, whichever comes first. Page requests are
// gated by the client's rate limiter.
func (c *NewsAPIClient) FetchTicker(ticker string, window time.Duration, limit int) ([]Article, error) {
	if limit < 1 {
		return nil, &ConfigError{Reason: "limit must be >= 1"}
	}
	if limit > maxResults {
		limit = maxResults
	}

	pageSize := limit
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var out []Article
	for page := 1; ; page++ {
		if err := c.limiter.Wait(context.Background()); err != nil {
			return nil, &TransportError{Err: err}
		}

		articles, total, err := c.Fetch(ticker, window, page, pageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, articles...)

		if len(articles) == 0 || len(out) >= limit || len(out) >= total {
			break
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
