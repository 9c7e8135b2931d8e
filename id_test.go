// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package letta

import (
	"testing"

	"github.com/go-json-experiment/json"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPrefix string
		wantErr    bool
	}{
		{
			name:       "agent ID",
			input:      "agent-00000000-0000-0000-0000-000000000001",
			wantPrefix: "agent",
		},
		{
			name:       "multi-part prefix",
			input:      "tool-rule-00000000-0000-0000-0000-000000000001",
			wantPrefix: "tool-rule",
		},
		{
			name:    "missing prefix",
			input:   "00000000-0000-0000-0000-000000000001",
			wantErr: true,
		},
		{
			name:    "bad UUID",
			input:   "agent-00000000-0000-0000-0000-zzzzzzzzzzzz",
			wantErr: true,
		},
		{
			name:    "no separator",
			input:   "agentx00000000-0000-0000-0000-000000000001",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace prefix",
			input:   "an agent-00000000-0000-0000-0000-000000000001",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) error = %v", tt.input, err)
			}
			if id.Prefix() != tt.wantPrefix {
				t.Errorf("Prefix() = %q, want %q", id.Prefix(), tt.wantPrefix)
			}
			if id.String() != tt.input {
				t.Errorf("String() = %q, want the input unchanged", id.String())
			}
		})
	}
}

func TestNewID(t *testing.T) {
	id := NewID("agent")
	if id.Prefix() != "agent" {
		t.Errorf("Prefix() = %q, want %q", id.Prefix(), "agent")
	}
	if id.IsZero() {
		t.Error("NewID() should not be zero")
	}

	reparsed, err := ParseID(id.String())
	if err != nil {
		t.Fatalf("ParseID(NewID().String()) error = %v", err)
	}
	if reparsed != id {
		t.Errorf("reparsed ID = %v, want %v", reparsed, id)
	}
}

func TestIDZero(t *testing.T) {
	var id ID
	if !id.IsZero() {
		t.Error("zero ID should report IsZero")
	}
	if id.String() != "" {
		t.Errorf("zero String() = %q, want empty", id.String())
	}
}

func TestIDJSON(t *testing.T) {
	id := MustParseID("agent-00000000-0000-0000-0000-000000000001")

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `"agent-00000000-0000-0000-0000-000000000001"`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var decoded ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != id {
		t.Errorf("Unmarshal() = %v, want %v", decoded, id)
	}

	if err := json.Unmarshal([]byte(`42`), &decoded); err == nil {
		t.Error("Unmarshal(non-string) error = nil, want error")
	}
	if err := json.Unmarshal([]byte(`"not-an-id"`), &decoded); err == nil {
		t.Error("Unmarshal(malformed) error = nil, want error")
	}
}

func TestMustParseIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseID should panic on malformed input")
		}
	}()
	MustParseID("garbage")
}
