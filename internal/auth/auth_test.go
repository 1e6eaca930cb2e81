package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-sombra-secreta"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestVerifyHeader(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-123"})

	ident, err := v.VerifyHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("VerifyHeader error: %v", err)
	}
	if ident.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", ident.UserID)
	}
	if ident.Bearer != token {
		t.Error("Expected the raw token to be carried for downstream scoping")
	}
}

func TestVerifyHeader_Invalid(t *testing.T) {
	v := NewVerifier(testSecret)

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"no bearer prefix", signToken(t, testSecret, jwt.MapClaims{"sub": "u"})},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": "u"})},
		{"missing subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"role": "admin"})},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.VerifyHeader(tt.header); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("error = %v, want ErrUnauthorized", err)
			}
		})
	}
}
