package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps an identity like "guest:abc" to a stable, filesystem- and
// key-safe directory name.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
