// Package errors provides shared error types for outbound HTTP calls.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// MinErrorStatusCode is the minimum HTTP status code considered an error.
	MinErrorStatusCode = 400

	maxErrorBody = 512
)

// HTTPError is a non-2xx/3xx response from an upstream.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

// Temporary reports whether retrying may succeed: 5xx and 429.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// CheckResponse returns an *HTTPError for error status codes and nil
// otherwise. At most a short prefix of the body is read.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode < MinErrorStatusCode {
		return nil
	}
	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{
		StatusCode: resp.StatusCode,
		URL:        url,
		Body:       strings.TrimSpace(string(body)),
	}
}

// StatusCode extracts the status code from an *HTTPError in err's chain.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// IsTemporary reports whether err wraps a temporary *HTTPError.
func IsTemporary(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Temporary()
}
