// Package relaystore implements the relay's server role.
//
// The relay is untrusted: it opens only the outer envelope sealed under the
// submitting client's session key, indexes the still-sealed inner envelope by
// its public invitation id, and hands it out exactly once, resealed under the
// fetching client's session key. It never sees an unlock key or a secret.
//
// Record lifecycle: Created (Receive) → Fetched (Fetch, terminal) or
// Expired (TTL, terminal). Both terminal states delete the record.
package relaystore
