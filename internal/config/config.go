package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries all runtime settings so constructors never reach into the
// environment themselves.
type Config struct {
	NewsAPIKey    string
	FinnhubAPIKey string
	YahooRSS      bool
	Tickers       []string
	WindowHours   int
	FetchLimit    int
	Timeout       time.Duration
	Retries       int
	DatabaseURL   string
	RedisURL      string
	IngestCron    string
	FrontendURL   string
	Port          string
}

const (
	defaultTickers     = "NVDA,TSM,ASML,AVGO"
	defaultWindowHours = 24
	defaultFetchLimit  = 50
	defaultTimeoutSec  = 10
	defaultRetries     = 3
	defaultCron        = "@every 1h"
	defaultPort        = "8080"

	minTimeoutSec = 1
	maxTimeoutSec = 30
	minRetries    = 1
	maxRetries    = 10
)

// Load builds a Config from environment variables. Out-of-range timeout and
// retry values fall back to defaults with a warning rather than failing.
func Load() (*Config, error) {
	cfg := &Config{
		NewsAPIKey:    os.Getenv("NEWS_API_KEY"),
		FinnhubAPIKey: os.Getenv("FINNHUB_API_KEY"),
		YahooRSS:      os.Getenv("YAHOO_RSS") != "false",
		Tickers:       parseTickers(getenvDefault("TICKERS", defaultTickers)),
		WindowHours:   parseIntDefault("WINDOW_HOURS", defaultWindowHours),
		FetchLimit:    parseIntDefault("FETCH_LIMIT", defaultFetchLimit),
		Retries:       parseIntDefault("RETRIES", defaultRetries),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		IngestCron:    getenvDefault("INGEST_CRON", defaultCron),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
		Port:          getenvDefault("PORT", defaultPort),
	}

	timeoutSec := parseIntDefault("TIMEOUT", defaultTimeoutSec)
	if timeoutSec < minTimeoutSec || timeoutSec > maxTimeoutSec {
		slog.Warn("TIMEOUT out of range, using default", "value", timeoutSec, "default", defaultTimeoutSec)
		timeoutSec = defaultTimeoutSec
	}
	cfg.Timeout = time.Duration(timeoutSec) * time.Second

	if cfg.Retries < minRetries || cfg.Retries > maxRetries {
		slog.Warn("RETRIES out of range, using default", "value", cfg.Retries, "default", defaultRetries)
		cfg.Retries = defaultRetries
	}

	if cfg.FetchLimit < 1 {
		slog.Warn("FETCH_LIMIT must be positive, using default", "value", cfg.FetchLimit, "default", defaultFetchLimit)
		cfg.FetchLimit = defaultFetchLimit
	}

	if cfg.WindowHours < 1 {
		slog.Warn("WINDOW_HOURS must be positive, using default", "value", cfg.WindowHours, "default", defaultWindowHours)
		cfg.WindowHours = defaultWindowHours
	}

	if len(cfg.Tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided, set TICKERS")
	}

	return cfg, nil
}

// Window is the ingestion lookback as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

func parseTickers(raw string) []string {
	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
