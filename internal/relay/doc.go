// Package relay carries the invitation protocol over HTTP.
//
// The server side (Handler) authenticates nothing itself: it resolves the
// caller's session key from the X-Client-Id header and lets the relay service
// open the outer envelope, so a wrong client id and a forged envelope look the
// same to the caller. Bodies are raw envelope bytes, nonce first.
//
// Routes:
//   - POST /v1/invitations        submit an envelope, 201 on success
//   - GET  /v1/invitations/{id}   take an envelope, 200 with the body
//   - GET  /healthz
//   - GET  /metrics               when enabled
//
// Errors travel as a status code plus a short plain-text code in the body;
// the HTTP client maps both back to the domain sentinels. Loopback offers the
// same client interface without a network for tests and single-process use.
package relay
