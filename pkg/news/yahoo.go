package news

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"time"
)

const yahooRSSEndpoint = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// userAgent keeps Yahoo from treating the fetcher as an anonymous bot.
const userAgent = "Mozilla/5.0 (compatible; SentimentsStocksBot/0.2; +https://github.com/rzv09/sentiments-stocks)"

// YahooRSSClient reads the public Yahoo Finance headline feed for a ticker.
// The feed carries no descriptions or authors, only headline, link, and
// publication time.
type YahooRSSClient struct {
	httpClient *http.Client
	region     string
	lang       string
}

func NewYahooRSSClient(timeout time.Duration) *YahooRSSClient {
	return &YahooRSSClient{
		httpClient: &http.Client{Timeout: timeout},
		region:     "US",
		lang:       "en-US",
	}
}

func (c *YahooRSSClient) Name() string {
	return "YahooFinanceRSS"
}

func (c *YahooRSSClient) FetchTicker(ticker string, window time.Duration, limit int) ([]Article, error) {
	if ticker == "" {
		return nil, &ConfigError{Reason: "ticker must not be empty"}
	}

	params := url.Values{}
	params.Set("s", ticker)
	params.Set("region", c.region)
	params.Set("lang", c.lang)

	req, err := http.NewRequest(http.MethodGet, yahooRSSEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &ParseError{Err: err}
	}

	cutoff := time.Now().UTC().Add(-window)

	var articles []Article
	for _, item := range feed.Channel.Items {
		if len(articles) >= limit {
			break
		}

		publishedAt, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			publishedAt = time.Time{}
		} else {
			publishedAt = publishedAt.UTC()
		}

		if !publishedAt.IsZero() && publishedAt.Before(cutoff) {
			continue
		}

		articles = append(articles, Article{
			ExternalID:  HashURL(item.Link),
			Headline:    item.Title,
			Detail:      item.Description,
			URL:         item.Link,
			PublishedAt: publishedAt,
			Symbols:     []string{ticker},
			Source:      c.Name(),
		})
	}

	return articles, nil
}

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}
