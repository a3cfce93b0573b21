package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rzv09/sentiments-stocks/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	defaultWindowHours = 24
	maxLimit           = 100
	cacheTTL           = time.Minute
)

type ArticleStore interface {
	GetNewsByTicker(ticker string, from, to time.Time, limit, offset int) ([]model.RawArticle, error)
	GetNewsByTickerTotal(ticker string, from, to time.Time) (int, error)
	GetSymbolsByArticleIDs(ids []int64) (map[int64][]string, error)
	GetTotal() (int, error)
	GetUnlabeledTotal() (int, error)
	GetUnlabeled(limit int) ([]model.RawArticle, error)
	SetSentiment(urlHash, sentiment string, confidence float64) (bool, error)
}

// LabelQueueInspector exposes the label queue depth for the stats endpoint.
type LabelQueueInspector interface {
	Depth() (int64, error)
}

// ResponseCache is an optional short-TTL cache for rendered news payloads.
type ResponseCache interface {
	Get(key string) ([]byte, error)
	Set(key string, payload []byte, ttl time.Duration) error
}

type NewsHandler struct {
	repository ArticleStore
	queue      LabelQueueInspector
	cache      ResponseCache
}

func NewNewsHandler(repository ArticleStore, queue LabelQueueInspector, cache ResponseCache) *NewsHandler {
	return &NewsHandler{repository: repository, queue: queue, cache: cache}
}

// GetNews serves the sentiment-partitioned window view for one ticker.
// Unlabeled articles are skipped; min_conf filters low-confidence labels.
func (h *NewsHandler) GetNews(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	hours := getQueryHours(c)
	limit := getQueryLimit(c)
	minConf, hasMinConf := getQueryMinConf(c)

	cacheKey := fmt.Sprintf("%s:%d:%d:%v:%v", ticker, hours, limit, minConf, hasMinConf)
	if h.cache != nil {
		if payload, err := h.cache.Get(cacheKey); err == nil && payload != nil {
			c.Data(http.StatusOK, "application/json", payload)
			return
		}
	}

	to := time.Now().UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)

	articles, err := h.repository.GetNewsByTicker(ticker, from, to, limit, 0)
	if err != nil {
		slog.Error("error querying news window", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	positive, negative := partitionSentiment(articles, minConf, hasMinConf)

	res := NewsResponse{
		Ticker:        ticker,
		WindowHours:   hours,
		CountPositive: len(positive),
		CountNegative: len(negative),
		Positive:      positive,
		Negative:      negative,
	}

	if h.cache != nil {
		if payload, err := json.Marshal(res); err == nil {
			if err := h.cache.Set(cacheKey, payload, cacheTTL); err != nil {
				slog.Warn("error caching news response", "key", cacheKey, "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, res)
}

// partitionSentiment splits labeled articles into positive and negative
// buckets, newest first (the query already orders them).
func partitionSentiment(articles []model.RawArticle, minConf float64, hasMinConf bool) ([]SentimentItem, []SentimentItem) {
	positive := []SentimentItem{}
	negative := []SentimentItem{}

	for _, a := range articles {
		if !a.Sentiment.Valid {
			continue
		}

		conf := 0.0
		if a.Confidence.Valid {
			conf = a.Confidence.Float64
		}

		if hasMinConf && conf < minConf {
			continue
		}

		item := SentimentItem{
			Headline:     a.Headline,
			URL:          a.URL,
			PublishedUTC: a.PublishedAt.UTC().Format(time.RFC3339),
			Confidence:   conf,
		}

		if a.Sentiment.String == model.SentimentPositive {
			positive = append(positive, item)
		} else {
			negative = append(negative, item)
		}
	}

	return positive, negative
}

// GetArticles serves the raw ingested feed for one ticker, labeled or not.
func (h *NewsHandler) GetArticles(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	hours := getQueryHours(c)
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	to := time.Now().UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)

	total, err := h.repository.GetNewsByTickerTotal(ticker, from, to)
	if err != nil {
		slog.Error("error fetching article total", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	articles, err := h.repository.GetNewsByTicker(ticker, from, to, limit, offset)
	if err != nil {
		slog.Error("error fetching articles", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var ids []int64
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	symbolMap, err := h.repository.GetSymbolsByArticleIDs(ids)
	if err != nil {
		slog.Error("error fetching symbols", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var articleRes []RawArticleResponse
	for _, a := range articles {
		res := RawArticleResponse{
			ID:          a.ID,
			Headline:    a.Headline,
			Detail:      a.Detail,
			Author:      a.Author,
			URL:         a.URL,
			Source:      a.Source,
			Publisher:   a.Publisher,
			PublishedAt: a.PublishedAt.UTC().Format(time.RFC3339),
			Symbols:     symbolMap[a.ID],
		}

		if a.Sentiment.Valid {
			res.Sentiment = a.Sentiment.String
			res.Confidence = a.Confidence.Float64
		}

		articleRes = append(articleRes, res)
	}

	c.JSON(http.StatusOK, ArticlesResponse{
		Articles: articleRes,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetUnlabeledArticles serves the labeler's work batch, oldest first.
func (h *NewsHandler) GetUnlabeledArticles(c *gin.Context) {
	limit := getQueryLimit(c)

	articles, err := h.repository.GetUnlabeled(limit)
	if err != nil {
		slog.Error("error fetching unlabeled articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var articleRes []RawArticleResponse
	for _, a := range articles {
		articleRes = append(articleRes, RawArticleResponse{
			ID:          a.ID,
			Headline:    a.Headline,
			Detail:      a.Detail,
			URL:         a.URL,
			Source:      a.Source,
			Publisher:   a.Publisher,
			PublishedAt: a.PublishedAt.UTC().Format(time.RFC3339),
			URLHash:     a.URLHash,
		})
	}

	c.JSON(http.StatusOK, UnlabeledResponse{Articles: articleRes, Limit: limit})
}

// PutSentiment records a label from the downstream labeler. The write only
// lands on still-unlabeled rows, so replayed batches get a conflict instead
// of overwriting an earlier label.
func (h *NewsHandler) PutSentiment(c *gin.Context) {
	urlHash := c.Param("url_hash")

	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if req.Sentiment != model.SentimentPositive && req.Sentiment != model.SentimentNegative {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentiment must be positive or negative"})
		return
	}

	if req.Confidence < 0 || req.Confidence > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be between 0 and 1"})
		return
	}

	updated, err := h.repository.SetSentiment(urlHash, req.Sentiment, req.Confidence)
	if err != nil {
		slog.Error("error saving sentiment", "url_hash", urlHash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !updated {
		c.JSON(http.StatusConflict, gin.H{"error": "article not found or already labeled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url_hash": urlHash, "sentiment": req.Sentiment})
}

func (h *NewsHandler) GetStats(c *gin.Context) {
	total, err := h.repository.GetTotal()
	if err != nil {
		slog.Error("error fetching totals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	unlabeled, err := h.repository.GetUnlabeledTotal()
	if err != nil {
		slog.Error("error fetching unlabeled total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var depth int64
	if h.queue != nil {
		depth, err = h.queue.Depth()
		if err != nil {
			slog.Warn("error reading label queue depth", "error", err)
			depth = -1
		}
	}

	c.JSON(http.StatusOK, StatsResponse{
		Total:      total,
		Labeled:    total - unlabeled,
		Unlabeled:  unlabeled,
		QueueDepth: depth,
	})
}

func (h *NewsHandler) GetHealth(c *gin.Context) {
	_, err := h.repository.GetTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsed
}

func getQueryHours(c *gin.Context) int {
	hours := getQueryInt("hours", defaultWindowHours, c)
	if hours < 1 {
		slog.Warn("invalid query parameter, using default", "param", "hours", "value", hours, "default", defaultWindowHours)
		return defaultWindowHours
	}
	return hours
}

func getQueryLimit(c *gin.Context) int {
	limit := getQueryInt("limit", maxLimit, c)
	if limit < 1 {
		return maxLimit
	}
	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}
	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		return 0
	}
	return offset
}

// getQueryMinConf returns the confidence floor clamped to [0,1], and
// whether one was supplied at all.
func getQueryMinConf(c *gin.Context) (float64, bool) {
	raw := c.Query("min_conf")
	if raw == "" {
		return 0, false
	}

	minConf, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid query parameter, ignoring", "param", "min_conf", "value", raw, "error", err)
		return 0, false
	}

	if minConf < 0 {
		minConf = 0
	}
	if minConf > 1 {
		minConf = 1
	}

	return minConf, true
}
