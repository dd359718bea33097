package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Local validation errors, raised before any request is issued.
var (
	ErrEmptyContent    = errors.New("message content is required")
	ErrContentTooLong  = errors.New("message content exceeds the maximum length")
	ErrInvalidType     = errors.New("invalid message type")
	ErrInvalidPage     = errors.New("page number must be zero or greater")
	ErrSessionFinished = errors.New("cannot update a finished session")
	ErrNotSyncedActor  = errors.New("only the host or a synced participant can update the page")
	ErrClosed          = errors.New("coordinator is closed")
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

func apiStatus(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}

// IsValidation reports whether the error is a local validation error or a
// 400-class server rejection.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrContentTooLong),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidPage):
		return true
	}
	status, ok := apiStatus(err)
	return ok && status == http.StatusBadRequest
}

func IsAuthorization(err error) bool {
	if errors.Is(err, ErrNotSyncedActor) {
		return true
	}
	status, ok := apiStatus(err)
	return ok && (status == http.StatusUnauthorized || status == http.StatusForbidden)
}

func IsNotFound(err error) bool {
	status, ok := apiStatus(err)
	return ok && status == http.StatusNotFound
}

// IsConflict reports a terminal-state rejection: repeating it will never
// succeed, but callers should treat it as a no-op failure, not a crash.
func IsConflict(err error) bool {
	if errors.Is(err, ErrSessionFinished) {
		return true
	}
	status, ok := apiStatus(err)
	return ok && status == http.StatusConflict
}

// IsTransient reports network-level failures and 5xx responses; poll cycles
// swallow these and retry on the next tick.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if status, ok := apiStatus(err); ok {
		return status >= http.StatusInternalServerError
	}
	return !IsValidation(err) && !IsAuthorization(err) && !IsNotFound(err) && !IsConflict(err) &&
		!errors.Is(err, ErrClosed)
}
