// Package inviter implements the inviting party: it mints an unlock key,
// seals a secret under it, and hands the sealed record to the relay wrapped in
// its own session-keyed envelope. The unlock key leaves this package only to
// be shared out of band with the invitee.
package inviter
