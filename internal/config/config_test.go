package config

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"NVDA", "TSM", "ASML", "AVGO"}, cfg.Tickers)
	assert.Equal(t, 24, cfg.WindowHours)
	assert.Equal(t, 24*time.Hour, cfg.Window())
	assert.Equal(t, 50, cfg.FetchLimit)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, "@every 1h", cfg.IngestCron)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadTickerParsing(t *testing.T) {
	t.Setenv("TICKERS", " tsla, nvda ,,msft ")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"TSLA", "NVDA", "MSFT"}, cfg.Tickers)
}

func TestLoadEmptyTickers(t *testing.T) {
	t.Setenv("TICKERS", " , ,")

	_, err := Load()
	assert.NotEqual(t, nil, err)
}

func TestLoadTimeoutClamped(t *testing.T) {
	t.Setenv("TIMEOUT", "120")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadRetriesClamped(t *testing.T) {
	t.Setenv("RETRIES", "0")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoadFetchLimitClamped(t *testing.T) {
	t.Setenv("FETCH_LIMIT", "0")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, 50, cfg.FetchLimit)
}

func TestLoadWindowClamped(t *testing.T) {
	t.Setenv("WINDOW_HOURS", "-5")

	cfg, err := Load()

	assert.Equal(t, nil, err)
	assert.Equal(t, 24, cfg.WindowHours)
}
