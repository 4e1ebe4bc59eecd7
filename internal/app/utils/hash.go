package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// CalculateHash returns the hex SHA-256 of everything read from r
func CalculateHash(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashBytes returns the hex SHA-256 of data
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
