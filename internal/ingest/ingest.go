package ingest

import (
	"log/slog"
	"time"

	"github.com/rzv09/sentiments-stocks/internal/model"
	"github.com/rzv09/sentiments-stocks/pkg/news"

	"github.com/cenkalti/backoff/v4"
)

// ArticleStore persists ingested articles. Save reports false for
// already-seen URLs.
type ArticleStore interface {
	SaveRawWithSymbols(article *model.RawArticle, symbols []string) (bool, error)
}

// LabelQueue hands url hashes of new articles to the downstream labeler.
type LabelQueue interface {
	Push(data string) error
}

// Stats summarizes one ingestion run.
type Stats struct {
	Fetched    int
	Saved      int
	Duplicated int
	Errors     int
}

// Ingestor pulls articles for each configured ticker from every provider,
// deduplicates by URL, and enqueues new rows for labeling.
type Ingestor struct {
	providers []news.Client
	store     ArticleStore
	queue     LabelQueue
	window    time.Duration
	limit     int
	retries   int

	newBackOff func() backoff.BackOff
}

func New(providers []news.Client, store ArticleStore, queue LabelQueue, window time.Duration, limit, retries int) *Ingestor {
	return &Ingestor{
		providers:  providers,
		store:      store,
		queue:      queue,
		window:     window,
		limit:      limit,
		retries:    retries,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 60 * time.Second
	return b
}

// Run ingests every ticker from every provider. Provider failures are
// logged and counted, never fatal; one bad source must not starve the rest.
func (i *Ingestor) Run(tickers []string) Stats {
	var stats Stats

	for _, provider := range i.providers {
		source := provider.Name()
		before := stats

		for _, ticker := range tickers {
			articles, err := i.fetchWithRetry(provider, ticker)
			if err != nil {
				slog.Error("error fetching articles", "source", source, "ticker", ticker, "error", err)
				stats.Errors++
				continue
			}

			stats.Fetched += len(articles)

			for _, a := range articles {
				saved, err := i.saveOne(a)
				if err != nil {
					slog.Error("error saving article", "source", source, "url", a.URL, "error", err)
					stats.Errors++
					continue
				}

				if !saved {
					stats.Duplicated++
					continue
				}

				stats.Saved++
			}
		}

		slog.Info("source ingested", "source", source,
			"saved", stats.Saved-before.Saved,
			"duplicated", stats.Duplicated-before.Duplicated,
			"errors", stats.Errors-before.Errors)
	}

	return stats
}

// fetchWithRetry retries transient failures (transport, upstream 429/5xx)
// with exponential back-off. Permanent failures surface immediately.
func (i *Ingestor) fetchWithRetry(provider news.Client, ticker string) ([]news.Article, error) {
	var articles []news.Article

	operation := func() error {
		var err error
		articles, err = provider.FetchTicker(ticker, i.window, i.limit)
		if err != nil && !news.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithMaxRetries(i.newBackOff(), uint64(i.retries))

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return articles, nil
}

func (i *Ingestor) saveOne(a news.Article) (bool, error) {
	article := toRawArticle(a)

	saved, err := i.store.SaveRawWithSymbols(&article, a.Symbols)
	if err != nil || !saved {
		return saved, err
	}

	if err := i.queue.Push(article.URLHash); err != nil {
		slog.Error("error pushing to label queue", "url_hash", article.URLHash, "error", err)
	}

	return true, nil
}

// toRawArticle maps a provider article onto the persistence row. URL and
// PublishedAt pass through untouched; only the identity hash is derived
// from the canonical URL.
func toRawArticle(a news.Article) model.RawArticle {
	hash := a.ExternalID
	if hash == "" {
		hash = news.HashURL(a.URL)
	}

	return model.RawArticle{
		URLHash:     hash,
		Headline:    a.Headline,
		Detail:      a.Detail,
		Author:      a.Author,
		Content:     a.Content,
		URL:         a.URL,
		Source:      a.Source,
		Publisher:   a.Publisher,
		PublishedAt: a.PublishedAt,
	}
}

// fromRawArticle restores the provider shape from a stored row.
func fromRawArticle(r model.RawArticle, symbols []string) news.Article {
	return news.Article{
		ExternalID:  r.URLHash,
		Headline:    r.Headline,
		Detail:      r.Detail,
		Author:      r.Author,
		Content:     r.Content,
		URL:         r.URL,
		Source:      r.Source,
		Publisher:   r.Publisher,
		PublishedAt: r.PublishedAt,
		Symbols:     symbols,
	}
}
