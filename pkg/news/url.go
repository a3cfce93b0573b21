package news

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var trackingPrefixes = []string{"utm_", "clk", "soc_src", "soc_trk", "spm", "gclid", "fbclid"}

// CanonicalURL normalizes a URL for deduplication: lowercases scheme and
// host, strips default ports, drops tracking query parameters, sorts the
// remaining pairs, and removes the fragment. Returns "" for unparseable or
// scheme-less input.
func CanonicalURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}

	host := strings.ToLower(parsed.Host)
	if (parsed.Scheme == "http" && strings.HasSuffix(host, ":80")) ||
		(parsed.Scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndex(host, ":")]
	}

	values := parsed.Query()
	keys := make([]string, 0, len(values))
	for k := range values {
		if isTrackingParam(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var query strings.Builder
	for _, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for _, v := range vs {
			if query.Len() > 0 {
				query.WriteByte('&')
			}
			query.WriteString(url.QueryEscape(k))
			query.WriteByte('=')
			query.WriteString(url.QueryEscape(v))
		}
	}

	clean := url.URL{
		Scheme:   strings.ToLower(parsed.Scheme),
		Host:     host,
		Path:     parsed.Path,
		RawQuery: query.String(),
	}

	return clean.String()
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// HashURL returns the sha1 hex digest of the canonical form of raw,
// used as the article identity across providers. Empty input hashes to "".
func HashURL(raw string) string {
	canon := CanonicalURL(raw)
	if canon == "" {
		return ""
	}
	return fmt.Sprintf("%x", sha1.Sum([]byte(canon)))
}
