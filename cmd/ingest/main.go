package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/rzv09/sentiments-stocks/db"
	"github.com/rzv09/sentiments-stocks/internal/config"
	"github.com/rzv09/sentiments-stocks/internal/ingest"
	"github.com/rzv09/sentiments-stocks/internal/repository"
	"github.com/rzv09/sentiments-stocks/pkg/news"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// redisLabelQueue adapts the shared Redis queue to the ingest pipeline.
type redisLabelQueue struct{}

func (redisLabelQueue) Push(data string) error {
	return db.PushToQueue(db.LabelQueueKey, data)
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	err = db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	var providers []news.Client
	if cfg.NewsAPIKey != "" {
		providers = append(providers, news.NewNewsAPIClient(cfg.NewsAPIKey, cfg.Timeout))
	}
	if cfg.FinnhubAPIKey != "" {
		providers = append(providers, news.NewFinnhubClient(cfg.FinnhubAPIKey))
	}
	if cfg.YahooRSS {
		providers = append(providers, news.NewYahooRSSClient(cfg.Timeout))
	}

	if len(providers) == 0 {
		slog.Error("no news source configured, set NEWS_API_KEY or FINNHUB_API_KEY")
		return
	}

	repo := repository.NewArticleRepository(db.DB)
	ingestor := ingest.New(providers, repo, redisLabelQueue{}, cfg.Window(), cfg.FetchLimit, cfg.Retries)

	run := func() {
		stats := ingestor.Run(cfg.Tickers)
		slog.Info("ingest run complete",
			"tickers", len(cfg.Tickers),
			"fetched", stats.Fetched,
			"saved", stats.Saved,
			"duplicated", stats.Duplicated,
			"errors", stats.Errors)
	}

	run()

	if cfg.IngestCron == "once" {
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.IngestCron, run); err != nil {
		log.Fatalf("invalid INGEST_CRON %q: %v", cfg.IngestCron, err)
	}

	slog.Info("ingest scheduled", "cron", cfg.IngestCron)
	c.Run()
}
