// Package memzero wipes key material and decrypted buffers after use.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Key wipes a fixed-size key in place. Callers pass a pointer to their own
// copy, e.g. memzero.Key((*[32]byte)(&sessionKey)).
func Key(k *[32]byte) {
	if k == nil {
		return
	}
	Zero(k[:])
}
