// Package verification issues short-lived codes that confirm a pending
// registration or password reset out of band.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// Purpose scopes a code to the action it confirms.
type Purpose string

const (
	PurposeSignUp        Purpose = "signup"
	PurposePasswordReset Purpose = "password_reset"
)

// codeLength is the byte length of generated codes.
const codeLength = 32 // 32 bytes = 256 bits

// ErrCodeNotFound is returned when a code is unknown, expired or already used.
var ErrCodeNotFound = errors.New("verification code not found")

// Code is an opaque verification code.
type Code string

// Request describes what a code is being issued for.
type Request struct {
	Purpose  Purpose
	Username string
	Email    string
}

// Issuer issues verification codes.
type Issuer interface {
	Issue(ctx context.Context, req Request) (Code, error)
}

// generateCode creates a secure random URL-safe code.
func generateCode() (Code, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return Code(base64.RawURLEncoding.EncodeToString(b)), nil
}

// hashCode is deterministic so stored codes can be looked up by hash.
func hashCode(code Code) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}
