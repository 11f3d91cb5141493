package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// Fields holds per-field validation messages, keyed by payload field.
	Fields map[string]string
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

// FieldErrors returns the backend's per-field messages carried by err, if
// any.
func FieldErrors(err error) map[string]string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Fields
	}
	return nil
}

// Message renders err as one line fit for the user: the backend's own
// message when it sent one, otherwise a generic description.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return http.StatusText(httpErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond."
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled."
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return "Could not reach the server."
	}
	return "Something went wrong. Please try again."
}

// parseHTTPError extracts a message from the error shapes the backend
// uses: {"detail"}, {"message"}, {"error"}, {"non_field_errors": [...]}
// or a map of field name to messages.
func parseHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		text := strings.TrimSpace(string(body))
		if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			e.Message = text
		} else {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
		if msg := firstString(raw[key]); msg != "" {
			e.Message = msg
			delete(raw, key)
			break
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := firstString(raw[k]); msg != "" {
			if e.Fields == nil {
				e.Fields = make(map[string]string)
			}
			e.Fields[k] = msg
			if e.Message == "" {
				e.Message = k + ": " + msg
			}
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// firstString decodes a JSON string or the first string of a JSON array.
func firstString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(v, &list) == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
