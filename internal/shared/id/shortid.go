package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12
)

// Prefixes for public reference codes (Stripe-style).
const (
	PrefixPayment    = "pay"
	PrefixMembership = "mem"
	PrefixNote       = "note"
	PrefixSetting    = "set"
)

// Generate creates a cryptographically random Base62 string of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[n.Int64()]
	}

	return string(result), nil
}

// GenerateWithPrefix creates an ID in the format "prefix_randomstring".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	s, err := Generate(length)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

// HasPrefix reports whether a prefixed ID was generated with prefix.
func HasPrefix(prefixedID, prefix string) bool {
	p, rest, ok := strings.Cut(prefixedID, "_")
	return ok && p == prefix && rest != ""
}

// NewPaymentHash generates the public reference code of a payment.
func NewPaymentHash() (string, error) {
	return GenerateWithPrefix(PrefixPayment, DefaultLength)
}

// NewMembershipHash generates the public reference code of a membership.
func NewMembershipHash() (string, error) {
	return GenerateWithPrefix(PrefixMembership, DefaultLength)
}

// NewNoteID generates a note identifier.
func NewNoteID() (string, error) {
	return GenerateWithPrefix(PrefixNote, 10)
}

// NewSettingID generates a setting identifier.
func NewSettingID() (string, error) {
	return GenerateWithPrefix(PrefixSetting, DefaultLength)
}
