package invite

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet excludes visually ambiguous characters (0/O, 1/I/l).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length of a private-match invite code.
const Length = 12

// NewCode generates a random invite code.
func NewCode() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	code := make([]byte, Length)
	for i, b := range buf {
		code[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(code), nil
}

// Valid reports whether the code has the expected length and alphabet.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
