package model

import (
	"database/sql"
	"time"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
)

// RawArticle is one row of raw_news. Sentiment and Confidence stay null
// until the downstream labeler fills them in.
type RawArticle struct {
	ID          int64
	URLHash     string
	Headline    string
	Detail      string
	Author      string
	Content     string
	URL         string
	Source      string
	Publisher   string
	PublishedAt time.Time
	IngestedAt  time.Time
	Sentiment   sql.NullString
	Confidence  sql.NullFloat64
}
