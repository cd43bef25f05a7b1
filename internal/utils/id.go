package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewClientID returns a random identifier for a connection.
func NewClientID() string {
	return uuid.NewString()
}

// NewRoomID returns a short hex room code built from n random bytes.
func NewRoomID(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("room id length must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
