package remote

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a failure reported by the remote movie service. Status is the
// upstream HTTP status, or 0 when the request never completed.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote service unreachable: %s", e.Message)
	}
	return fmt.Sprintf("remote service returned %d: %s", e.Status, e.Message)
}

// NotFound reports whether the error is an upstream 404.
func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// newError builds an Error from an upstream failure response, pulling the
// message out of a JSON error body when there is one.
func newError(status int, body []byte) *Error {
	message := http.StatusText(status)

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			message = parsed.Message
		} else if parsed.Error != "" {
			message = parsed.Error
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		message = text
	}

	return &Error{Status: status, Message: message}
}

// AsError unwraps err into a *Error when it is one.
func AsError(err error) (*Error, bool) {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}
