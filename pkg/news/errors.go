package news

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigError reports a missing or invalid credential or parameter. It is
// returned before any network call is made.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "news: config: " + e.Reason
}

// UpstreamError reports a non-success response from the upstream API. It
// carries the HTTP status and response body for diagnosis. StatusCode is
// http.StatusOK when the upstream rejected the request inside a 200 body.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("news: upstream returned %d: %s", e.StatusCode, e.Body)
}

// TransportError reports a network-level failure (timeout, DNS, reset).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "news: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that was not valid JSON or was missing
// expected fields.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "news: parse: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Retryable reports whether err is worth retrying: transport failures and
// upstream 429/5xx. Config, parse, and other 4xx errors are permanent.
func Retryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode == http.StatusTooManyRequests || ue.StatusCode >= 500
	}

	return false
}
