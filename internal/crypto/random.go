package crypto

import (
	"crypto/rand"
	"io"

	"blindrelay/internal/domain"
)

// GenerateUnlockKey returns a fresh unlock key read from r, or from
// crypto/rand when r is nil.
func GenerateUnlockKey(r io.Reader) (k domain.UnlockKey, err error) {
	err = fill(r, k[:])
	return
}

// GenerateSessionKey returns a fresh session key. Provisioning is out of band;
// this only produces the bytes.
func GenerateSessionKey(r io.Reader) (k domain.SessionKey, err error) {
	err = fill(r, k[:])
	return
}

// NewNonce returns 24 random bytes.
func NewNonce(r io.Reader) (n domain.Nonce, err error) {
	err = fill(r, n[:])
	return
}

func fill(r io.Reader, b []byte) error {
	if r == nil {
		r = rand.Reader
	}
	_, err := io.ReadFull(r, b)
	return err
}
