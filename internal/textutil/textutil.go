package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode"
)

// ContainsTibetan checks if a string contains Tibetan characters.
func ContainsTibetan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Tibetan, r) {
			return true
		}
	}
	return false
}

// Hash computes a SHA-256 hex hash of a string for fingerprinting.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
