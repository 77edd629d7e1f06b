package aspe

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of profile verification failure.
type ErrorCode string

const (
	ErrCodeMalformedURI         ErrorCode = "malformed_uri"
	ErrCodeMalformedToken       ErrorCode = "malformed_token"
	ErrCodeMissingKey           ErrorCode = "missing_key"
	ErrCodeInvalidKey           ErrorCode = "invalid_key"
	ErrCodeUnsupportedAlgorithm ErrorCode = "unsupported_algorithm"
	ErrCodeSignatureInvalid     ErrorCode = "signature_invalid"
	ErrCodeFingerprintMismatch  ErrorCode = "fingerprint_mismatch"
	ErrCodeFetchFailed          ErrorCode = "fetch_failed"
)

var (
	// ErrMalformed is matched by errors caused by syntactically invalid input.
	ErrMalformed = errors.New("malformed input")

	// ErrAuthentication is matched by every error that means the profile could not be authenticated.
	// Retrying these without a new token is pointless.
	ErrAuthentication = errors.New("profile could not be authenticated")

	// ErrTransport is matched by errors while fetching the profile token.
	ErrTransport = errors.New("profile could not be fetched")
)

var errorMessages = map[ErrorCode]string{
	ErrCodeMalformedURI:         "Malformed profile URI",
	ErrCodeMalformedToken:       "Malformed profile token",
	ErrCodeMissingKey:           "No usable key in token header",
	ErrCodeInvalidKey:           "Invalid embedded key",
	ErrCodeUnsupportedAlgorithm: "Unsupported key algorithm",
	ErrCodeSignatureInvalid:     "Invalid token signature",
	ErrCodeFingerprintMismatch:  "Key fingerprint does not match profile URI",
	ErrCodeFetchFailed:          "Failed to fetch profile token",
}

var errorKinds = map[ErrorCode]error{
	ErrCodeMalformedURI:         ErrMalformed,
	ErrCodeMalformedToken:       ErrMalformed,
	ErrCodeMissingKey:           ErrAuthentication,
	ErrCodeInvalidKey:           ErrAuthentication,
	ErrCodeUnsupportedAlgorithm: ErrAuthentication,
	ErrCodeSignatureInvalid:     ErrAuthentication,
	ErrCodeFingerprintMismatch:  ErrAuthentication,
	ErrCodeFetchFailed:          ErrTransport,
}

// Error wraps profile verification errors with a stable code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAuthentication) and friends work for coded errors.
func (e *Error) Is(target error) bool {
	kind, ok := errorKinds[e.Code]
	return ok && kind == target
}

func newError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of a profile verification error, or "" if err is not one.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
