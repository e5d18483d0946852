package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	sessionTokenBytes         = 32
	errGenerateRandomBytesFmt = "failed to generate random bytes: %w"
	errByteLengthPositiveFmt  = "byteLength must be positive"
)

// GenerateSessionToken returns 32 random bytes encoded as unpadded base64url.
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func GenerateHex(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf(errByteLengthPositiveFmt)
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
	}

	return hex.EncodeToString(bytes), nil
}

// Hash returns the hex SHA-256 of token. Only hashes are ever stored.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
