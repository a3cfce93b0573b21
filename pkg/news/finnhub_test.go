package news

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/go-playground/assert/v2"
)

func newFinnhubStub(srv *httptest.Server) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", "test-key")
	cfg.HTTPClient = &http.Client{
		Transport: &rewriteTransport{base: srv.URL, inner: http.DefaultTransport},
	}
	return &FinnhubClient{client: finnhub.NewAPIClient(cfg).DefaultApi}
}

func TestFinnhubFetchTicker(t *testing.T) {
	var gotQuery map[string][]string

	recent := time.Now().UTC().Add(-2 * time.Hour).Unix()
	stale := time.Now().UTC().Add(-72 * time.Hour).Unix()

	payload := []map[string]interface{}{
		{
			"id":       int64(7189),
			"headline": "Nvidia earnings beat expectations",
			"summary":  "Record data center revenue.",
			"url":      "https://example.com/nvidia-earnings",
			"source":   "MarketWatch",
			"datetime": recent,
			"related":  "NVDA,TSM",
		},
		{
			"id":       int64(7190),
			"headline": "Old item outside the window",
			"url":      "https://example.com/old-item",
			"datetime": stale,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := newFinnhubStub(srv)

	articles, err := client.FetchTicker("NVDA", 24*time.Hour, 50)

	assert.Equal(t, nil, err)
	assert.Equal(t, "NVDA", gotQuery["symbol"][0])

	from, parseErr := time.Parse("2006-01-02", gotQuery["from"][0])
	assert.Equal(t, nil, parseErr)
	to, parseErr := time.Parse("2006-01-02", gotQuery["to"][0])
	assert.Equal(t, nil, parseErr)
	assert.Equal(t, false, to.Before(from))

	// the stale item falls inside the day-boundary request but outside
	// the window, so it is filtered locally
	assert.Equal(t, 1, len(articles))

	a := articles[0]
	assert.Equal(t, "Nvidia earnings beat expectations", a.Headline)
	assert.Equal(t, "Record data center revenue.", a.Detail)
	assert.Equal(t, "https://example.com/nvidia-earnings", a.URL)
	assert.Equal(t, "MarketWatch", a.Publisher)
	assert.Equal(t, "Finnhub", a.Source)
	assert.Equal(t, []string{"NVDA", "TSM"}, a.Symbols)
	assert.Equal(t, HashURL("https://example.com/nvidia-earnings"), a.ExternalID)
}

func TestFinnhubFetchTickerLimit(t *testing.T) {
	now := time.Now().UTC().Unix()

	var payload []map[string]interface{}
	for i := 0; i < 5; i++ {
		payload = append(payload, map[string]interface{}{
			"headline": "Item",
			"url":      "https://example.com/item",
			"datetime": now,
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := newFinnhubStub(srv)

	articles, err := client.FetchTicker("NVDA", 24*time.Hour, 2)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(articles))
}

func TestFinnhubFetchTickerAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid API key"}`))
	}))
	defer srv.Close()

	client := newFinnhubStub(srv)

	_, err := client.FetchTicker("NVDA", 24*time.Hour, 50)

	ue, ok := err.(*UpstreamError)
	assert.Equal(t, true, ok)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)

	// a bad key must never be retried
	assert.Equal(t, false, Retryable(err))
}

func TestFinnhubFetchTickerRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newFinnhubStub(srv)

	_, err := client.FetchTicker("NVDA", 24*time.Hour, 50)

	ue, ok := err.(*UpstreamError)
	assert.Equal(t, true, ok)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, true, Retryable(err))
}

func TestFinnhubFetchTickerEmptyTicker(t *testing.T) {
	client := NewFinnhubClient("test-key")

	_, err := client.FetchTicker("", 24*time.Hour, 50)

	_, ok := err.(*ConfigError)
	assert.Equal(t, true, ok)
}
