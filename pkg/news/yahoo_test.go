package news

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Yahoo! Finance: NVDA News</title>
    <item>
      <title>Nvidia earnings beat expectations</title>
      <link>https://finance.yahoo.com/news/nvidia-earnings.html</link>
      <description>Record data center revenue.</description>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Old item outside the window</title>
      <link>https://finance.yahoo.com/news/old-item.html</link>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`

func newYahooStub(srv *httptest.Server) *YahooRSSClient {
	client := &YahooRSSClient{
		httpClient: srv.Client(),
		region:     "US",
		lang:       "en-US",
	}
	client.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}
	return client
}

func TestYahooFetchTicker(t *testing.T) {
	var gotUA string
	var gotQuery map[string][]string

	recent := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := time.Now().UTC().Add(-72 * time.Hour).Format(time.RFC1123Z)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, rssTemplate, recent, stale)
	}))
	defer srv.Close()

	client := newYahooStub(srv)

	articles, err := client.FetchTicker("NVDA", 24*time.Hour, 50)

	assert.Equal(t, nil, err)
	assert.Equal(t, "NVDA", gotQuery["s"][0])
	assert.Equal(t, "US", gotQuery["region"][0])
	assert.Equal(t, "en-US", gotQuery["lang"][0])
	assert.Equal(t, userAgent, gotUA)

	// stale item is filtered out by the window
	assert.Equal(t, 1, len(articles))

	a := articles[0]
	assert.Equal(t, "Nvidia earnings beat expectations", a.Headline)
	assert.Equal(t, "Record data center revenue.", a.Detail)
	assert.Equal(t, "https://finance.yahoo.com/news/nvidia-earnings.html", a.URL)
	assert.Equal(t, "YahooFinanceRSS", a.Source)
	assert.Equal(t, []string{"NVDA"}, a.Symbols)
	assert.Equal(t, HashURL(a.URL), a.ExternalID)
}

func TestYahooFetchTickerUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newYahooStub(srv)

	_, err := client.FetchTicker("NVDA", 24*time.Hour, 50)

	ue, ok := err.(*UpstreamError)
	assert.Equal(t, true, ok)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, true, Retryable(err))
}

func TestYahooFetchTickerBadXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{\"not\":\"xml\"}")
	}))
	defer srv.Close()

	client := newYahooStub(srv)

	_, err := client.FetchTicker("NVDA", 24*time.Hour, 50)

	_, ok := err.(*ParseError)
	assert.Equal(t, true, ok)
}
