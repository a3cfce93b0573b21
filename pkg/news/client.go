package news

import "time"

// Article is one news item as returned by an upstream provider, before
// persistence. URL is the natural identifier; ExternalID is the sha1 of its
// canonical form. Content may carry the upstream truncation marker verbatim.
type Article struct {
	ExternalID  string
	Headline    string
	Detail      string
	Author      string
	Content     string
	URL         string
	Source      string
	PublishedAt time.Time
	Symbols     []string
	Publisher   string
}

// Client fetches recent articles for one ticker over a lookback window
// ending now, returning at most limit articles in upstream order.
type Client interface {
	FetchTicker(ticker string, window time.Duration, limit int) ([]Article, error)
	Name() string
}
