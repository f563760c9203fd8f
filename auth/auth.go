// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// CodeAlphabet is the character set voter codes are drawn from.
// Uppercase letters and digits read back cleanly over the phone and on paper.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidCodeSpec = errors.New("invalid voter code alphabet or length")
)

// GenerateAdminKey creates an HMAC-based admin key for an election
// This is deterministic and verifiable
func GenerateAdminKey(electionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(electionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the election
func ValidateAdminKey(electionID, adminKey, salt string) error {
	expected := GenerateAdminKey(electionID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateVoterCode draws length characters uniformly from alphabet using
// crypto/rand. Codes are secrets; math/rand must never be used here.
func GenerateVoterCode(alphabet string, length int) (string, error) {
	if len(alphabet) < 2 || length < 1 {
		return "", ErrInvalidCodeSpec
	}

	limit := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate voter code: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeCode trims whitespace and uppercases a code typed by a voter.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
