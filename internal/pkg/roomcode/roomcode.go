// Package roomcode generates and validates the 16-character room codes
// that address every chat room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

const (
	// Length is the exact number of characters in a room code.
	Length = 16

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)

// Generate returns a new random room code drawn from [A-Za-z0-9] using a
// cryptographically strong source.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Validate reports whether code matches the external contract:
// exactly 16 characters from [A-Za-z0-9].
func Validate(code string) bool {
	return codePattern.MatchString(code)
}
