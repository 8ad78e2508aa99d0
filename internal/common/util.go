package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Default backend coordinates shared by the agent and the service.
const (
	DefaultBackendPort = 8080
	HealthPath         = "/api/pos/health"
)

// GeneratedPasswordBytes is the entropy of a generated admin password.
const GeneratedPasswordBytes = 12

// Wipe zeroes a secret read from the terminal once it has been used.
func Wipe(secret []byte) {
	clear(secret)
}

// GeneratePassword returns a random hex password built from n bytes.
func GeneratePassword(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
