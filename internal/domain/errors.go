package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailure is returned whenever an AEAD open fails. A wrong
	// key and a tampered ciphertext are reported identically.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrRelayAuthFailure is an authentication failure on the outer, session
	// keyed envelope.
	ErrRelayAuthFailure = fmt.Errorf("relay envelope: %w", ErrAuthenticationFailure)

	// ErrNotFound is returned for an unknown, expired or already consumed id.
	ErrNotFound = errors.New("invitation not found")

	// ErrConflict is returned when a live record already exists for an id.
	ErrConflict = errors.New("invitation already pending")

	// ErrMalformedRecord is returned when a decrypted record is too short.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMalformedEnvelope is returned when wire bytes cannot hold a nonce and tag.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrUnknownClient is returned when no session key exists for a client.
	ErrUnknownClient = errors.New("unknown client")
)
