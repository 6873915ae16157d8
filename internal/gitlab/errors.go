package gitlab

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrMissingToken is returned when no access token is configured.
	ErrMissingToken = errors.New("gitlab: access token is not configured")
	// ErrMissingBaseURL is returned when no GitLab origin is configured.
	ErrMissingBaseURL = errors.New("gitlab: base url is not configured")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	StatusText string
	Method     string
	Path       string
	// Message is GitLab's own error message from the response body, if any.
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// IsNotFound reports whether err is a 404 from GitLab.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

func newHTTPError(resp *http.Response, method, path, message string) *HTTPError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		StatusText: text,
		Method:     method,
		Path:       path,
		Message:    message,
	}
}
