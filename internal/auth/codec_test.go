package auth

import (
	"encoding/base64"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestDecodeRoundTrip(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	signed := mintToken(t, &Claims{
		Username: "alice",
		Name:     "Alice Example",
		Role:     "Patient",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	})

	claims, err := Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Username != "alice" || claims.Name != "Alice Example" || claims.Role != "Patient" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "42" {
		t.Errorf("expected subject 42, got %q", claims.Subject)
	}
	if !claims.ExpiresAt.Time.Equal(expiry) {
		t.Errorf("expected expiry %v, got %v", expiry, claims.ExpiresAt.Time)
	}
}

func TestDecodeMalformed(t *testing.T) {
	notJSON := base64.RawURLEncoding.EncodeToString([]byte("plain text"))
	cases := map[string]string{
		"empty":            "",
		"one segment":      "abc",
		"two segments":     "abc.def",
		"four segments":    "a.b.c.d",
		"payload not b64":  "header.!!!.sig",
		"payload not json": "header." + notJSON + ".sig",
	}
	for name, credential := range cases {
		if _, err := Decode(credential); err != ErrMalformedCredential {
			t.Errorf("%s: expected ErrMalformedCredential, got %v", name, err)
		}
	}
}

func TestDecodeIgnoresSignature(t *testing.T) {
	signed := mintToken(t, &Claims{Username: "alice"})
	tampered := signed[:len(signed)-4] + "AAAA"
	claims, err := Decode(tampered)
	if err != nil {
		t.Fatalf("decode with bad signature: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %q", claims.Username)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	past := mintToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
	}})
	future := mintToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Second)),
	}})
	noExpiry := mintToken(t, &Claims{Username: "alice"})

	if !IsExpired(past, now) {
		t.Error("token expired 10s ago should report expired")
	}
	if IsExpired(future, now) {
		t.Error("token expiring in 10s should not report expired")
	}
	if IsExpired(noExpiry, now) {
		t.Error("token without exp claim should not report expired")
	}
	if !IsExpired("not-a-token", now) {
		t.Error("undecodable token should fail open to expired")
	}
}

func TestClaimsIdentityFallbacks(t *testing.T) {
	full := &Claims{Name: "Alice Example", Username: "alice", Role: "Staff"}
	if id := full.Identity(); id.Name != "Alice Example" || id.Role != "Staff" {
		t.Errorf("unexpected identity: %+v", id)
	}

	usernameOnly := &Claims{Username: "alice"}
	if id := usernameOnly.Identity(); id.Name != "alice" || id.Role != "Patient" {
		t.Errorf("unexpected identity: %+v", id)
	}

	empty := &Claims{}
	if id := empty.Identity(); id.Name != "User" || id.Role != "Patient" {
		t.Errorf("unexpected identity: %+v", id)
	}
}
