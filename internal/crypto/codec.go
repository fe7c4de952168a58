package crypto

import (
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"blindrelay/internal/domain"
)

// Seal encrypts and authenticates plaintext under key and nonce. The returned
// ciphertext carries the 16-byte tag as its suffix.
func Seal(key [domain.KeySize]byte, nonce domain.Nonce, plaintext []byte) []byte {
	return newAEAD(key).Seal(nil, nonce[:], plaintext, nil)
}

// Open verifies and decrypts ciphertext. Any tag mismatch, truncation or wrong
// key yields domain.ErrAuthenticationFailure and a nil plaintext. A verified
// plaintext is never nil, even when empty.
func Open(key [domain.KeySize]byte, nonce domain.Nonce, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < domain.TagSize {
		return nil, domain.ErrAuthenticationFailure
	}
	pt, err := newAEAD(key).Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, domain.ErrAuthenticationFailure
	}
	if pt == nil {
		// Verified empty plaintext is never nil.
		pt = []byte{}
	}
	return pt, nil
}

func newAEAD(key [domain.KeySize]byte) cipher.AEAD {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		// Only reachable with a key that is not 32 bytes.
		panic(err)
	}
	return aead
}
