package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	cerrors "github.com/jrsteele09/go-course-client/internal/errors"
)

// StatusError is a response received with a non-2xx status.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
	// Message is the API's {"message": ...} text when the body carries one
	Message string
}

func newStatusError(method, path string, statusCode int, body []byte) *StatusError {
	e := &StatusError{
		StatusCode: statusCode,
		Method:     method,
		Path:       path,
		Body:       body,
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	return e
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// RefreshError is returned to every caller that depended on a failed token
// refresh. The session has been torn down when it is returned.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Is lets callers test for cerrors.ErrSessionExpired.
func (e *RefreshError) Is(target error) bool {
	return target == cerrors.ErrSessionExpired
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return cerrors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if cerrors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// NeedsLogin reports whether err means the session is gone and the user has to
// authenticate again.
func NeedsLogin(err error) bool {
	return IsUnauthorized(err) || cerrors.Is(err, cerrors.ErrSessionExpired)
}
