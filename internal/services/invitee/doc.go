// Package invitee implements the invited party. Given an unlock key received
// out of band, it derives the invitation id, fetches the record from the relay
// under its own session key, and opens the inner envelope.
package invitee
