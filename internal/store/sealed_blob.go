package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// The current supported version of the sealed blob format stored on disk.
const blobFormatVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// blob has been modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted file")

// blob is the on-disk JSON structure holding the ciphertext and KDF parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// sealBlob derives a key from passphrase under a fresh salt and seals raw.
// purpose is bound as associated data so blobs cannot be swapped between files.
func sealBlob(passphrase, purpose string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()

	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; the salt makes every key fresh
	ct := aead.Seal(nil, nonce[:], raw, adFor(purpose, salt[:]))

	return json.Marshal(blob{V: blobFormatVersion, Salt: salt[:], N: N, R: r, P: p, Cipher: ct})
}

// openBlob reverses sealBlob.
func openBlob(passphrase, purpose string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > blobFormatVersion {
		return nil, fmt.Errorf("unsupported blob version %d", bl.V)
	}
	if err := checkScryptParams(bl.N, bl.R, bl.P); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, adFor(purpose, bl.Salt))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// checkScryptParams rejects KDF costs above what sealBlob writes, so a
// tampered file cannot demand unbounded CPU or memory.
func checkScryptParams(N, r, p int) error {
	maxN, maxR, maxP := scryptParamsDefault()
	if N < 2 || N > maxN || N&(N-1) != 0 || r < 1 || r > maxR || p < 1 || p > maxP {
		return fmt.Errorf("%w: scrypt parameters N=%d r=%d p=%d out of range", ErrWrongPassphrase, N, r, p)
	}
	return nil
}

func adFor(purpose string, salt []byte) []byte {
	return append([]byte(purpose+"|"), salt...)
}
