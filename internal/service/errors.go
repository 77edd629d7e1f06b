package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/darmiel/doipv/internal/aspe"
	"github.com/darmiel/doipv/internal/openpgp"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Wrapped:    err,
	}
}

// classify attaches the status code matching the kind of a verification error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, aspe.ErrMalformed), errors.Is(err, openpgp.ErrInvalidMapping):
		return httpError(http.StatusBadRequest, err)
	case errors.Is(err, aspe.ErrAuthentication):
		return httpError(http.StatusUnprocessableEntity, err)
	case errors.Is(err, aspe.ErrTransport):
		return httpError(http.StatusBadGateway, err)
	case errors.Is(err, context.DeadlineExceeded):
		return httpError(http.StatusGatewayTimeout, err)
	default:
		return httpError(http.StatusInternalServerError, err)
	}
}

// StatusCode returns the HTTP status code of err, or 500 if it has none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}
