package handler

// SentimentItem is the compact shape served inside the positive/negative
// buckets.
type SentimentItem struct {
	Headline     string  `json:"headline"`
	URL          string  `json:"url"`
	PublishedUTC string  `json:"published_utc"`
	Confidence   float64 `json:"confidence"`
}

type NewsResponse struct {
	Ticker        string          `json:"ticker"`
	WindowHours   int             `json:"window_hours"`
	CountPositive int             `json:"count_positive"`
	CountNegative int             `json:"count_negative"`
	Positive      []SentimentItem `json:"positive"`
	Negative      []SentimentItem `json:"negative"`
}

type RawArticleResponse struct {
	ID          int64    `json:"id"`
	Headline    string   `json:"headline"`
	Detail      string   `json:"detail"`
	Author      string   `json:"author,omitempty"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Publisher   string   `json:"publisher"`
	PublishedAt string   `json:"published_at"`
	Symbols     []string `json:"symbols,omitempty"`
	URLHash     string   `json:"url_hash,omitempty"`
	Sentiment   string   `json:"sentiment,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
}

type UnlabeledResponse struct {
	Articles []RawArticleResponse `json:"articles"`
	Limit    int                  `json:"limit"`
}

// LabelRequest is the labeler's write-back payload.
type LabelRequest struct {
	Sentiment  string  `json:"sentiment" binding:"required"`
	Confidence float64 `json:"confidence"`
}

type ArticlesResponse struct {
	Articles []RawArticleResponse `json:"articles"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

type StatsResponse struct {
	Total      int   `json:"total"`
	Labeled    int   `json:"labeled"`
	Unlabeled  int   `json:"unlabeled"`
	QueueDepth int64 `json:"queue_depth"`
}
