package sync

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileSHA1 returns the lowercase hex SHA-1 digest of the file at path,
// reading through io.Copy's bounded buffer so arbitrarily large files never
// load fully into memory. A missing file surfaces as an error satisfying
// errors.Is(err, fs.ErrNotExist); callers decide whether that is a skip or
// a failure.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("sync: opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha1.New() //nolint:gosec

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("sync: hashing %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
