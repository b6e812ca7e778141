package api

import (
	"fmt"
	"net/http"

	"github.com/zuno-wallet/zuno-go/internal/common"
)

// StatusError keeps the HTTP status code and the server-supplied message
// alongside the sentinel it maps to.
type StatusError struct {
	Code    int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// mapStatus converts a non-2xx HTTP status into a StatusError wrapping the
// matching sentinel from internal/common, so callers can use errors.Is.
func mapStatus(code int, message string) error {
	var sentinel error
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		sentinel = common.ErrUnauthorized
	case code == http.StatusNotFound:
		sentinel = common.ErrNotFound
	case code == http.StatusConflict:
		sentinel = common.ErrTagAlreadyRegistered
	case code == http.StatusPaymentRequired:
		sentinel = common.ErrInsufficientBalance
	case code >= 500:
		sentinel = common.ErrInternal
	}
	return &StatusError{Code: code, Message: message, Err: sentinel}
}
