// Package wire encodes the byte layouts exchanged between the inviter, the
// relay and the invitee.
//
//	Envelope      nonce (24) ‖ ciphertext (≥16, tag suffix)
//	Record        invitation id (32) ‖ inner nonce (24) ‖ inner ciphertext (≥16)
//	ReturnRecord  inner nonce (24) ‖ inner ciphertext (≥16)
//
// Parsers copy out of their input so callers may wipe it afterwards.
package wire
