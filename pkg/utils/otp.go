package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

func GenerateOTP(digits int) (string, error) {
	max := uint64(1)
	for i := 0; i < digits; i++ {
		max *= 10
	}

	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	num := binary.LittleEndian.Uint64(b) % max
	format := fmt.Sprintf("%%0%dd", digits)
	return fmt.Sprintf(format, num), nil
}

// GenerateResetToken returns a URL-safe random token for password reset links.
func GenerateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
