// Package auth verifies the Supabase-issued bearer token carried by every
// assistant request and extracts the caller identity from it. The role is
// never taken from the token or the request body; it is looked up server-side
// per request.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized covers every token failure: missing, malformed, bad
// signature, or no subject claim.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the verified caller of one request.
type Identity struct {
	UserID string
	// Bearer is the raw token, forwarded to the caller-scoped store client
	// so row-level security still applies to reads made on the caller's
	// behalf.
	Bearer string
}

// Verifier checks HS256 tokens against the project JWT secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier. secret is the Supabase JWT secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyHeader verifies an Authorization header value ("Bearer <token>").
func (v *Verifier) VerifyHeader(header string) (Identity, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return Identity{}, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	return v.Verify(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
}

// Verify verifies a raw token and returns the identity it carries.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrUnauthorized)
	}
	if len(v.secret) == 0 {
		return Identity{}, fmt.Errorf("%w: verifier has no JWT secret", ErrUnauthorized)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}

	return Identity{UserID: sub, Bearer: token}, nil
}
