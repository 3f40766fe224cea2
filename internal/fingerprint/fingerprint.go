package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Length is the hex-encoded fingerprint length (SHA-256).
const Length = 64

var hexPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Compute computes the privacy-preserving account fingerprint using SHA256.
// Formula: SHA256(account_id), lowercase hex, 64 characters.
//
// The digest is deliberately unsalted: duplicate detection requires the same
// account id to produce the same fingerprint on every run. This is the only
// representation of account identity allowed to persist.
func Compute(accountID string) string {
	hash := sha256.Sum256([]byte(accountID))
	return hex.EncodeToString(hash[:])
}

// Valid reports whether s has the shape of a fingerprint.
// Used to guard the ledger against corrupt keys.
func Valid(s string) bool {
	return hexPattern.MatchString(s)
}
