package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// Detail returns the server-provided message of an HTTPError, or "".
func Detail(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}

func newHTTPError(status int, body []byte) *HTTPError {
	return &HTTPError{StatusCode: status, Message: errorMessage(body), Body: body}
}

// errorMessage extracts a readable message from an error body. It understands
// {"detail": ...}, {"error": ...}, {"message": ...} and per-field error maps
// such as {"email": ["already taken"]}.
func errorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"detail", "error", "message"} {
		if raw, ok := fields[key]; ok {
			if s := flatten(raw); s != "" {
				return s
			}
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		s := flatten(fields[k])
		if s == "" {
			continue
		}
		if k == "non_field_errors" {
			parts = append(parts, s)
		} else {
			parts = append(parts, k+": "+s)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(string(body))
	}
	return strings.Join(parts, "; ")
}

func flatten(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, " ")
	}
	return ""
}
