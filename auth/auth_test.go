// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCaller(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple name", "alice", false},
		{"hex address", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", false},
		{"email-like", "bob@example.com", false},
		{"namespaced", "team:ops-1", false},
		{"max length", strings.Repeat("a", MaxCallerBytes), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxCallerBytes+1), true},
		{"contains space", "alice smith", true},
		{"contains slash", "alice/bob", true},
		{"non-ascii", "zoë", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCaller(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCaller)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeCaller(t *testing.T) {
	id, err := NormalizeCaller("  alice\n")
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	_, err = NormalizeCaller("   ")
	assert.ErrorIs(t, err, ErrInvalidCaller)
}

func TestNewEventID(t *testing.T) {
	id1 := NewEventID()
	id2 := NewEventID()

	_, err := uuid.Parse(id1)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2, "NewEventID() produced duplicate IDs")
}
