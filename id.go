// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package letta

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a typed Letta resource identifier of the form "prefix-uuid",
// for example "agent-00000000-0000-0000-0000-000000000001". The prefix
// names the resource type. IDs are opaque identity and position
// tokens: they are compared for equality and serialized, never
// ordered or rewritten.
type ID struct {
	prefix string
	id     uuid.UUID
}

// ParseID parses an identifier of the form "prefix-uuid".
func ParseID(s string) (ID, error) {
	// The UUID occupies the last 36 bytes; everything before the
	// joining hyphen is the resource prefix.
	if len(s) < 38 {
		return ID{}, fmt.Errorf("letta: invalid ID %q", s)
	}
	sep := len(s) - 37
	if s[sep] != '-' {
		return ID{}, fmt.Errorf("letta: invalid ID %q", s)
	}
	u, err := uuid.Parse(s[sep+1:])
	if err != nil {
		return ID{}, fmt.Errorf("letta: invalid ID %q: %w", s, err)
	}
	prefix := s[:sep]
	if prefix == "" || strings.ContainsAny(prefix, " \t\n") {
		return ID{}, fmt.Errorf("letta: invalid ID prefix in %q", s)
	}
	return ID{prefix: prefix, id: u}, nil
}

// MustParseID is like [ParseID] but panics on malformed input. It is
// intended for tests and package-level literals.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewID generates a fresh identifier with the given resource prefix.
func NewID(prefix string) ID {
	return ID{prefix: prefix, id: uuid.New()}
}

// Prefix returns the resource-type prefix, such as "agent".
func (i ID) Prefix() string { return i.prefix }

// IsZero reports whether the ID is the zero value.
func (i ID) IsZero() bool { return i.prefix == "" }

// String returns the wire form "prefix-uuid".
func (i ID) String() string {
	if i.IsZero() {
		return ""
	}
	return i.prefix + "-" + i.id.String()
}

// MarshalJSON implements json.Marshaler.
func (i ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *ID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("letta: ID must be a JSON string, got %q", data)
	}
	parsed, err := ParseID(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
