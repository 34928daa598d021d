// Package cryptoutils generates the opaque identifiers and bearer
// secrets used by the instance registry and order log, and provides
// constant-time token comparison.
//
// All randomness comes from crypto/rand. The identifier shapes are a
// compatibility surface with the storefront and operator tooling:
//
//   - instance ids:  id-<16 hex chars>
//   - order ids:     ORD-<12 uppercase hex chars>
//   - bearer tokens: 64 hex chars (32 bytes)
//   - credentials:   dd_api_/dd_app_ + 32 hex chars
package cryptoutils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

func randomHex(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewInstanceID returns a fresh opaque instance identifier.
func NewInstanceID() (string, error) {
	s, err := randomHex(8)
	if err != nil {
		return "", err
	}
	return "id-" + s, nil
}

// NewOrderID returns a fresh opaque order identifier.
func NewOrderID() (string, error) {
	s, err := randomHex(6)
	if err != nil {
		return "", err
	}
	return "ORD-" + strings.ToUpper(s), nil
}

// NewBearerToken returns a 32-byte random token encoded as hex.
func NewBearerToken() (string, error) {
	return randomHex(32)
}

// NewCredentialPair returns a fresh apiKey/appKey credential pair for
// an instance.
func NewCredentialPair() (apiKey, appKey string, err error) {
	a, err := randomHex(16)
	if err != nil {
		return "", "", err
	}
	b, err := randomHex(16)
	if err != nil {
		return "", "", err
	}
	return "dd_api_" + a, "dd_app_" + b, nil
}

// TokenEqual compares two tokens in constant time. Empty tokens never
// match anything, including each other.
func TokenEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
