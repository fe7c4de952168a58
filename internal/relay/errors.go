package relay

import (
	"errors"
	"net/http"
	"strings"

	"blindrelay/internal/domain"
)

// Plain-text error codes written in response bodies.
const (
	codeConflict          = "conflict"
	codeNotFound          = "not_found"
	codeAuthFailure       = "auth_failure"
	codeUnknownClient     = "unknown_client"
	codeMalformedRecord   = "malformed_record"
	codeMalformedEnvelope = "malformed_envelope"
	codeTooLarge          = "too_large"
	codeInternal          = "internal"
)

// statusFor maps a service error to an HTTP status and body code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, codeConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrUnknownClient):
		return http.StatusUnauthorized, codeUnknownClient
	case errors.Is(err, domain.ErrAuthenticationFailure):
		return http.StatusUnauthorized, codeAuthFailure
	case errors.Is(err, domain.ErrMalformedRecord):
		return http.StatusBadRequest, codeMalformedRecord
	case errors.Is(err, domain.ErrMalformedEnvelope):
		return http.StatusBadRequest, codeMalformedEnvelope
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// errorFor maps a non-2xx response back to a domain sentinel where one exists.
func errorFor(status int, body string) error {
	code := strings.TrimSpace(body)
	switch code {
	case codeConflict:
		return domain.ErrConflict
	case codeNotFound:
		return domain.ErrNotFound
	case codeUnknownClient:
		return domain.ErrUnknownClient
	case codeAuthFailure:
		return domain.ErrRelayAuthFailure
	case codeMalformedRecord:
		return domain.ErrMalformedRecord
	case codeMalformedEnvelope:
		return domain.ErrMalformedEnvelope
	}
	switch status {
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrRelayAuthFailure
	}
	return nil
}
