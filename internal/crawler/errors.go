package crawler

import (
	"fmt"
	"net/http"
)

// HTTPError is a response whose status the caller does not handle.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: http status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
