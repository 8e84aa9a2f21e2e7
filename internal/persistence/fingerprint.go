package persistence

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"github.com/Language-Creation-Society/slotmachine/internal/models"
)

// Fingerprint hashes a descriptor's canonical JSON encoding with blake2b,
// so a run can be looked up again by the exact input it solved without
// storing the (potentially large) descriptor itself as the lookup key.
func Fingerprint(d *models.Descriptor) (string, error) {
	canonical, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
