// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	builder := jwt.NewBuilder().
		Subject("user-1").
		Issuer("letta-test")
	if !exp.IsZero() {
		builder = builder.Expiration(exp)
	}
	tok, err := builder.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), []byte("test-secret")))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestAuthHeader(t *testing.T) {
	tests := []struct {
		name    string
		creds   *Credentials
		want    string
		wantErr bool
	}{
		{name: "none", creds: None(), want: ""},
		{name: "nil", creds: nil, want: ""},
		{name: "api key", creds: APIKey("sk-test"), want: "Bearer sk-test"},
		{name: "bearer", creds: Bearer("tok"), want: "Bearer tok"},
		{name: "bearer without token", creds: &Credentials{Type: TypeBearer}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.creds.AuthHeader()
			if (err != nil) != tt.wantErr {
				t.Fatalf("AuthHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AuthHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	creds, err := ParseJWT(signedToken(t, exp))
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if creds.Type != TypeJWT {
		t.Errorf("Type = %q, want %q", creds.Type, TypeJWT)
	}
	if creds.ExpiresAt == nil || !creds.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", creds.ExpiresAt, exp)
	}
	if creds.IsExpired() {
		t.Error("IsExpired() = true for a token expiring in an hour")
	}
}

func TestParseJWTExpired(t *testing.T) {
	creds, err := ParseJWT(signedToken(t, time.Now().Add(-time.Hour)))
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if !creds.IsExpired() {
		t.Error("IsExpired() = false for a token that expired an hour ago")
	}
}

func TestParseJWTWithoutExpiry(t *testing.T) {
	creds, err := ParseJWT(signedToken(t, time.Time{}))
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if creds.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", creds.ExpiresAt)
	}
	if creds.IsExpired() {
		t.Error("IsExpired() = true for a token without an exp claim")
	}
}

func TestParseJWTMalformed(t *testing.T) {
	if _, err := ParseJWT("not-a-jwt"); err == nil {
		t.Error("ParseJWT() accepted a malformed token")
	}
}

func TestAuthenticated(t *testing.T) {
	if None().Authenticated() {
		t.Error("None() reports authenticated")
	}
	if !APIKey("k").Authenticated() {
		t.Error("APIKey() reports unauthenticated")
	}
}
