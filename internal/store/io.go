package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"blindrelay/internal/util/memzero"
)

// readSealedJSON opens the blob at path into out. A missing file leaves out
// untouched and reports found=false.
func readSealedJSON(path, passphrase, purpose string, out any) (found bool, err error) {
	b, err := readFile(path)
	if err != nil || b == nil {
		return false, err
	}
	raw, err := openBlob(passphrase, purpose, b)
	if err != nil {
		return false, err
	}
	defer memzero.Zero(raw)
	return true, json.Unmarshal(raw, out)
}

// writeSealedJSON seals v under passphrase and replaces path atomically.
func writeSealedJSON(path, passphrase, purpose string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)
	b, err := sealBlob(passphrase, purpose, raw)
	if err != nil {
		return err
	}
	return writeFile(path, b, 0o600)
}

// readFile reads the file at path into b; a missing file is not an error.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
