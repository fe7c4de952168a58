// Package main runs the blind invitation relay.
//
// The relay stores sealed invitations submitted by one client and hands each
// out once to whichever client presents its invitation id, resealed under that
// client's session key. It never holds an unlock key, so it cannot read what
// it relays.
//
// HTTP API
//
//	POST /v1/invitations
//	    Body is an outer envelope (24 byte nonce then ciphertext) sealed under
//	    the session key of the client named in X-Client-Id. 201 on success,
//	    409 if the invitation id is already pending.
//
//	GET /v1/invitations/{id}
//	    Take the invitation with the 64 hex character id. The body is an
//	    envelope sealed under the caller's session key. 404 when the id is
//	    unknown, expired or already taken.
//
//	GET /healthz
//
//	GET /metrics
//	    Prometheus counters, when Metrics.Enable is set.
//
// Behaviour
//
//   - Each invitation can be fetched once; the fetch deletes it.
//   - Unfetched invitations are purged after Storage.TTL (default 336h).
//   - Storage is memory, bolt or sqlite, chosen by Storage.Backend.
//   - Every response carries an X-Request-Id.
//   - SIGINT and SIGTERM trigger a graceful shutdown.
package main
