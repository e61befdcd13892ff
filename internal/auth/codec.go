package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/clinic-client/internal/domain"
)

// ErrMalformedCredential is returned when a stored credential does not have
// the three-segment JWT shape or its payload cannot be decoded.
var ErrMalformedCredential = errors.New("malformed credential")

// Claims describes the JWT payload fields the client consumes.
type Claims struct {
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity maps claims onto a display identity, falling back field by field
// the way the directory header expects.
func (c *Claims) Identity() domain.Identity {
	identity := domain.FallbackIdentity
	if c.Name != "" {
		identity.Name = c.Name
	} else if c.Username != "" {
		identity.Name = c.Username
	}
	if c.Role != "" {
		identity.Role = c.Role
	}
	return identity
}

// Decode extracts claims from a bearer credential without verifying its
// signature. The client trusts the issuing server to have signed what it
// handed out and re-validates the token server-side on every authenticated
// request; local decode establishes shape only, for display and expiry
// estimation.
func Decode(credential string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, ErrMalformedCredential
	}
	return claims, nil
}

// IsExpired reports whether the credential's expiry claim is strictly before
// now. A credential that cannot be decoded fails open to expired. A missing
// expiry claim means the credential never expires locally.
func IsExpired(credential string, now time.Time) bool {
	claims, err := Decode(credential)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now)
}
