package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// TokenFingerprint returns the hex SHA-256 of token, used as a fixed-size
// key for revocation records.
func TokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
