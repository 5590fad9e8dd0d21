package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-level failures (timeouts, refused connections)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeHTTPStatus represents unexpected non-200 HTTP responses
	ErrorTypeHTTPStatus ErrorType = "http_status"
	// ErrorTypeRateLimit represents HTTP 429 rate limiting
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeBlocked represents a 403/404 response: the listing series is
	// blocked or removed, so pagination for the neighborhood must stop
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeSoftBlock represents an undersized response body, a likely
	// soft block served instead of real results
	ErrorTypeSoftBlock ErrorType = "soft_block"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// FetchError represents a classified failure in the scraping pipeline
type FetchError struct {
	Type       ErrorType
	URL        string
	StatusCode int
	Message    string
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.URL, e.Message)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if another attempt at the same URL may succeed
func (e *FetchError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeHTTPStatus, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// New creates a new FetchError
func New(errType ErrorType, url, message string, err error) *FetchError {
	return &FetchError{
		Type:    errType,
		URL:     url,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(url string, err error) *FetchError {
	return New(ErrorTypeNetwork, url, "request failed", err)
}

// NewHTTPStatus creates an error for an unexpected status code
func NewHTTPStatus(url string, status int) *FetchError {
	e := New(ErrorTypeHTTPStatus, url, fmt.Sprintf("unexpected status code: %d", status), nil)
	e.StatusCode = status
	return e
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(url, retryAfter string) *FetchError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	e := New(ErrorTypeRateLimit, url, message, nil)
	e.StatusCode = 429
	return e
}

// NewBlocked creates an error for a blocked or removed listing series
func NewBlocked(url string, status int) *FetchError {
	e := New(ErrorTypeBlocked, url, fmt.Sprintf("blocked or removed (status %d)", status), nil)
	e.StatusCode = status
	return e
}

// NewSoftBlock creates an error for a suspiciously small response body
func NewSoftBlock(url string, size int) *FetchError {
	return New(ErrorTypeSoftBlock, url, fmt.Sprintf("response too small (%d bytes), probable soft block", size), nil)
}

// NewParsing creates a new parsing error
func NewParsing(url, message string, err error) *FetchError {
	return New(ErrorTypeParsing, url, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *FetchError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsHardStop reports whether err means the whole neighborhood pagination
// must be abandoned (site blocked us or removed the listing series).
func IsHardStop(err error) bool {
	return isType(err, ErrorTypeBlocked)
}

// IsSoftBlock reports whether err is an undersized-response soft block.
func IsSoftBlock(err error) bool {
	return isType(err, ErrorTypeSoftBlock)
}

// IsRateLimit reports whether err is a rate-limit classification.
func IsRateLimit(err error) bool {
	return isType(err, ErrorTypeRateLimit)
}

func isType(err error, t ErrorType) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type == t
	}
	return false
}
