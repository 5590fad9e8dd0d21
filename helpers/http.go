package helpers

import (
	"bytes"
	"io"
	mathrand "math/rand"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"rentscout/logger"
	errs "rentscout/pkg/errors"
)

// Browser-like header configuration
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 12_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
}

// RandomUserAgent returns one of the known browser User-Agent strings,
// drawn freshly per call.
func RandomUserAgent() string {
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	return userAgents[rnd.Intn(len(userAgents))]
}

// SetBrowserHeaders sets a randomized User-Agent and a fixed mainstream
// browser header set on the request.
func SetBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	req.Header.Set("Connection", "keep-alive")
}

// Fetcher retrieves listing pages with bounded retries and classifies each
// outcome. Waits and limits are fields so tests can shrink them.
type Fetcher struct {
	client        *http.Client
	log           *logger.Logger
	MaxAttempts   int
	RateLimitWait time.Duration
	RetryWait     time.Duration
	MinBodySize   int
}

// NewFetcher creates a fetcher with the production timeouts.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:        &http.Client{Timeout: 30 * time.Second},
		log:           logger.ForFetcher(),
		MaxAttempts:   3,
		RateLimitWait: 15 * time.Second,
		RetryWait:     5 * time.Second,
		MinBodySize:   1000,
	}
}

// FetchPage issues a GET with randomized browser headers, retrying up to
// MaxAttempts times. Outcomes:
//   - 200: body returned (converted to UTF-8 when needed)
//   - 429: wait RateLimitWait, retry
//   - 403/404: blocked error immediately, no further attempts
//   - other status / network failure: wait RetryWait, retry
//
// A 200 body under MinBodySize is classified as a soft block. After the
// attempts are exhausted the last classified error is returned.
func (f *Fetcher) FetchPage(url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.MaxAttempts; attempt++ {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, errs.NewNetwork(url, err)
		}
		SetBrowserHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			f.log.Debug().Err(err).Str("url", url).Int("attempt", attempt).Msg("request failed")
			lastErr = errs.NewNetwork(url, err)
			f.wait(attempt, f.RetryWait)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lastErr = errs.NewNetwork(url, readErr)
				f.wait(attempt, f.RetryWait)
				continue
			}
			if len(body) < f.MinBodySize {
				return nil, errs.NewSoftBlock(url, len(body))
			}
			return toUTF8(body, resp.Header.Get("Content-Type"))

		case resp.StatusCode == http.StatusTooManyRequests:
			f.log.Debug().Str("url", url).Int("attempt", attempt).Msg("rate limited")
			lastErr = errs.NewRateLimit(url, resp.Header.Get("Retry-After"))
			f.wait(attempt, f.RateLimitWait)

		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
			// The site blocked us or removed the listing series; retrying
			// the same neighborhood only makes it worse.
			return nil, errs.NewBlocked(url, resp.StatusCode)

		default:
			f.log.Debug().Int("status", resp.StatusCode).Str("url", url).Int("attempt", attempt).Msg("unexpected status")
			lastErr = errs.NewHTTPStatus(url, resp.StatusCode)
			f.wait(attempt, f.RetryWait)
		}
	}

	return nil, lastErr
}

// wait sleeps between attempts but not after the final one.
func (f *Fetcher) wait(attempt int, d time.Duration) {
	if attempt < f.MaxAttempts {
		time.Sleep(d)
	}
}

// toUTF8 converts the body to UTF-8 based on the Content-Type header and the
// body content itself.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	converted, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, errs.NewParsing("", "failed to convert body to UTF-8", err)
	}
	return converted, nil
}
