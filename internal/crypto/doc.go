// Package crypto exposes the minimal primitives used by the relay protocol.
//
// Contents
//
//   - XChaCha20-Poly1305 seal/open used identically at every layer (Seal, Open)
//   - One-way invitation id derivation from an unlock key (DeriveInvitationID)
//   - Fresh keys and nonces from a random source (GenerateUnlockKey,
//     GenerateSessionKey, NewNonce)
//
// # Notes
//
// Open fails closed: every failure is domain.ErrAuthenticationFailure and no
// plaintext is returned. Nonces are 24 random bytes, so independent senders
// never need to coordinate a counter.
package crypto
