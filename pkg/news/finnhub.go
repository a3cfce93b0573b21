package news

import (
	"context"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnhubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubClient{client: client}
}

func (c *FinnhubClient) Name() string {
	return "Finnhub"
}

// FetchTicker pulls company news for the ticker. Finnhub only accepts
// whole dates, so the window is widened to day boundaries and filtered
// back down locally.
func (c *FinnhubClient) FetchTicker(ticker string, window time.Duration, limit int) ([]Article, error) {
	if ticker == "" {
		return nil, &ConfigError{Reason: "ticker must not be empty"}
	}

	to := time.Now().UTC()
	from := to.Add(-window)

	res, httpResp, err := c.client.CompanyNews(context.Background()).
		Symbol(ticker).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		// the SDK also errors on non-2xx responses; only a nil response
		// means the request never completed
		if httpResp != nil {
			return nil, &UpstreamError{StatusCode: httpResp.StatusCode, Body: err.Error()}
		}
		return nil, &TransportError{Err: err}
	}

	var articles []Article

	for _, item := range res {
		if len(articles) >= limit {
			break
		}

		a := Article{
			Source:  c.Name(),
			Symbols: []string{ticker},
		}

		if item.Headline != nil {
			a.Headline = *item.Headline
		}

		if item.Summary != nil {
			a.Detail = *item.Summary
		}

		if item.Url != nil {
			a.URL = *item.Url
			a.ExternalID = HashURL(*item.Url)
		} else if item.Id != nil {
			a.ExternalID = strconv.FormatInt(*item.Id, 10)
		}

		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0).UTC()
		}

		if item.Source != nil {
			a.Publisher = *item.Source
		}

		if item.Related != nil && *item.Related != "" {
			for _, sym := range strings.Split(*item.Related, ",") {
				if sym != "" && sym != ticker {
					a.Symbols = append(a.Symbols, sym)
				}
			}
		}

		if a.PublishedAt.Before(from) {
			continue
		}

		articles = append(articles, a)
	}

	return articles, nil
}
