package utils

import (
	"encoding/base64"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// GenerateID generates a new time-sortable UUIDv7 string
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		log.Printf("Failed to generate UUID: %v", err)
		return ""
	}
	return id.String()
}

// IDToBase64 encodes a 16 byte record id using url-safe base64.
func IDToBase64(id []byte) string {
	return base64.URLEncoding.EncodeToString(id)
}

// Base64ToID decodes a url-safe base64 string, padded or not, into a 16 byte record id.
func Base64ToID(s string) ([16]byte, error) {
	var id [16]byte

	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(s)
		if err != nil {
			return id, fmt.Errorf("invalid base64 id: %w", err)
		}
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid id length %d", len(b))
	}

	copy(id[:], b)
	return id, nil
}
