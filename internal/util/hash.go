package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func SHA256Hex(b []byte) string {
	x := sha256.Sum256(b)
	return hex.EncodeToString(x[:])
}

// QuestionHash groups repeated questions regardless of case and spacing.
func QuestionHash(q string) string {
	return SHA256Hex([]byte(strings.ToLower(normalizeWhitespace(q))))
}
