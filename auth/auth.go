// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth holds the credential types the letta client attaches
// to outgoing requests. Token acquisition and refresh flows are out
// of scope; credentials are constructed once and treated as
// immutable.
package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// CredentialType identifies how a credential is presented to the
// service.
type CredentialType string

// Credential types.
const (
	TypeNone   CredentialType = "none"
	TypeAPIKey CredentialType = "api_key"
	TypeBearer CredentialType = "bearer"
	TypeJWT    CredentialType = "jwt"
)

// Credentials is one immutable set of client credentials. The zero
// value is TypeNone, suitable for local development servers that
// require no authentication.
type Credentials struct {
	Type  CredentialType
	Token string
	// ExpiresAt is known only for JWT bearer tokens, populated from
	// the token's exp claim.
	ExpiresAt *time.Time
}

// None returns empty credentials for unauthenticated servers.
func None() *Credentials {
	return &Credentials{Type: TypeNone}
}

// APIKey returns API-key credentials presented as a bearer header.
func APIKey(key string) *Credentials {
	return &Credentials{Type: TypeAPIKey, Token: key}
}

// Bearer returns bearer-token credentials.
func Bearer(token string) *Credentials {
	return &Credentials{Type: TypeBearer, Token: token}
}

// ParseJWT builds credentials from a JWT bearer token, extracting the
// expiry claim without verifying the signature. Verification is the
// server's job; the client only uses the expiry to fail fast on
// tokens that cannot possibly be accepted.
func ParseJWT(token string) (*Credentials, error) {
	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return nil, fmt.Errorf("auth: parse JWT: %w", err)
	}

	creds := &Credentials{Type: TypeJWT, Token: token}
	if exp, ok := parsed.Expiration(); ok && !exp.IsZero() {
		creds.ExpiresAt = &exp
	}
	return creds, nil
}

// IsExpired reports whether the credential carries a known expiry in
// the past. Credentials without a known expiry are never expired.
func (c *Credentials) IsExpired() bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// Authenticated reports whether the credential carries a token.
func (c *Credentials) Authenticated() bool {
	return c != nil && c.Type != TypeNone && c.Token != ""
}

// AuthHeader returns the Authorization header value, or "" when no
// authentication is configured.
func (c *Credentials) AuthHeader() (string, error) {
	if c == nil || c.Type == TypeNone {
		return "", nil
	}
	if c.Token == "" {
		return "", fmt.Errorf("auth: %s credentials without a token", c.Type)
	}
	switch c.Type {
	case TypeAPIKey, TypeBearer, TypeJWT:
		return "Bearer " + c.Token, nil
	default:
		return "", fmt.Errorf("auth: unsupported credential type %q", c.Type)
	}
}
