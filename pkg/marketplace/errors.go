package marketplace

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not-found"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindServer       Kind = "server"
)

// APIError is returned for transport failures and non-2xx responses.
type APIError struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("marketplace: network error: %v", e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("marketplace: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("marketplace: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsKind reports whether err is an APIError of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// kindFor maps an HTTP status to a Kind.
func kindFor(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}
