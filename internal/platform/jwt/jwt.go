// Package jwt inspects claims of JSON Web Tokens issued by the identity provider.
// It never verifies signatures: the provider owns token validity, this package
// only reads what the provider already decided.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry claim")

// ExpiresAt returns the exp claim of tokenString without checking its signature.
func ExpiresAt(tokenString string) (time.Time, error) {
	var claims jwtv5.RegisteredClaims

	if _, _, err := jwtv5.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}

// Subject returns the sub claim of tokenString without checking its signature.
// For provider access tokens this is the user's immutable identifier.
func Subject(tokenString string) (string, error) {
	var claims jwtv5.RegisteredClaims

	if _, _, err := jwtv5.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	return claims.Subject, nil
}
