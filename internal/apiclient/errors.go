package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoJobID is returned when an upload is accepted without a job identifier.
var ErrNoJobID = errors.New("upload response did not contain a job_id")

// APIError is a non-2xx response from the API. Body holds the decoded JSON
// when the response had one and the raw text otherwise.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   any
}

func newAPIError(method, path string, status int, data []byte) *APIError {
	e := &APIError{Method: method, Path: path, Status: status}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return e
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err == nil {
		e.Body = decoded
	} else {
		e.Body = string(trimmed)
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail())
}

// Detail returns the most useful human readable part of the response body.
func (e *APIError) Detail() string {
	switch body := e.Body.(type) {
	case nil:
		return http.StatusText(e.Status)
	case string:
		return body
	case map[string]any:
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	data, err := json.Marshal(e.Body)
	if err != nil {
		return http.StatusText(e.Status)
	}
	return string(data)
}

// StatusOf returns the HTTP status carried by an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
