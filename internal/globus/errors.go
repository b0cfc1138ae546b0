package globus

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx response from a Globus service.
type APIError struct {
	Service    string
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s API error %d (%s): %s [request %s]", e.Service, e.StatusCode, e.Code, msg, e.RequestID)
	}
	return fmt.Sprintf("%s API error %d (%s): %s", e.Service, e.StatusCode, e.Code, msg)
}

// newAPIError builds an APIError from a response body. The services differ
// in their envelope: transfer uses code/message/request_id at the top
// level, auth wraps errors in an errors array.
func newAPIError(service string, status int, body []byte) *APIError {
	doc := gjson.ParseBytes(body)

	apiErr := &APIError{
		Service:    service,
		StatusCode: status,
		Code:       doc.Get("code").String(),
		Message:    doc.Get("message").String(),
		RequestID:  doc.Get("request_id").String(),
	}

	if first := doc.Get("errors.0"); apiErr.Message == "" && first.Exists() {
		apiErr.Code = first.Get("code").String()
		apiErr.Message = first.Get("detail").String()
		if apiErr.Message == "" {
			apiErr.Message = first.Get("title").String()
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = doc.Get("detail").String()
	}

	return apiErr
}

// IsNotFound reports whether err is a 404 from a Globus service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from a Globus service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 from a Globus service.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}

// IsConflict reports whether err is a 409 from a Globus service.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsHighAssurance reports whether err is a 403 caused by a missing
// high-assurance session. Deleting projects and OAuth clients, and
// updating projects, requires MFA within the last 30 minutes, which a
// non-interactive credential can never satisfy.
func IsHighAssurance(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		return false
	}

	text := strings.ToLower(apiErr.Code + " " + apiErr.Message)
	return strings.Contains(text, "high assurance") ||
		strings.Contains(text, "high_assurance") ||
		strings.Contains(text, "session") ||
		strings.Contains(text, "multi-factor") ||
		strings.Contains(text, "mfa")
}

// FriendlyError wraps a platform error with actionable guidance.
func FriendlyError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUnauthorized(err):
		return fmt.Errorf("authentication failed, token may be expired or missing required scopes: %w", err)
	case IsHighAssurance(err):
		return fmt.Errorf("operation requires a high-assurance session (MFA within the last 30 minutes), use the Globus web console instead: %w", err)
	case IsForbidden(err):
		return fmt.Errorf("permission denied, the authenticated identity lacks access to this resource: %w", err)
	case IsNotFound(err):
		return fmt.Errorf("resource not found: %w", err)
	default:
		return err
	}
}

// isRetryable reports whether a request should be retried. Rate limits
// and server errors are transient; everything else is not.
func isRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
}
