package jwt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/allthepins/identity-adapter/internal/platform/jwt"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// signToken produces a token signed with a key the parser never sees.
func signToken(t *testing.T, claims jwtv5.Claims) string {
	t.Helper()

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("provider-owned-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestExpiresAt(t *testing.T) {
	t.Run("should return the exp claim", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		tokenString := signToken(t, &jwtv5.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwtv5.NewNumericDate(exp),
		})

		got, err := jwt.ExpiresAt(tokenString)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !got.Equal(exp) {
			t.Errorf("expected expiry %v, but got %v", exp, got)
		}
	})

	t.Run("should read expired tokens too", func(t *testing.T) {
		exp := time.Now().Add(-time.Hour).Truncate(time.Second)
		tokenString := signToken(t, &jwtv5.RegisteredClaims{ExpiresAt: jwtv5.NewNumericDate(exp)})

		got, err := jwt.ExpiresAt(tokenString)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !got.Equal(exp) {
			t.Errorf("expected expiry %v, but got %v", exp, got)
		}
	})

	t.Run("should return ErrNoExpiry when exp is missing", func(t *testing.T) {
		tokenString := signToken(t, &jwtv5.RegisteredClaims{Subject: "user-123"})

		_, err := jwt.ExpiresAt(tokenString)
		if !errors.Is(err, jwt.ErrNoExpiry) {
			t.Fatalf("expected ErrNoExpiry, but got: %v", err)
		}
	})

	t.Run("should fail on malformed token", func(t *testing.T) {
		_, err := jwt.ExpiresAt("not-a-jwt")
		if err == nil {
			t.Fatal("expected an error for a malformed token, but got nil")
		}
	})
}

func TestSubject(t *testing.T) {
	tokenString := signToken(t, &jwtv5.RegisteredClaims{Subject: "user-123"})

	sub, err := jwt.Subject(tokenString)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if sub != "user-123" {
		t.Errorf("expected subject %q, but got %q", "user-123", sub)
	}
}
