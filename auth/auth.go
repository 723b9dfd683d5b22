// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxCallerBytes = 64

var (
	ErrInvalidCaller = errors.New("invalid caller identity")
)

// ValidateCaller checks that id is usable as a caller or owner identity.
// Identities are opaque, but they end up in store keys, so they are limited
// to a conservative character set.
func ValidateCaller(id string) error {
	if id == "" || len(id) > MaxCallerBytes {
		return ErrInvalidCaller
	}
	for i := 0; i < len(id); i++ {
		if !isIdentityChar(id[i]) {
			return ErrInvalidCaller
		}
	}
	return nil
}

// NormalizeCaller trims surrounding whitespace and validates the result.
// Used for identities typed on the command line.
func NormalizeCaller(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if err := ValidateCaller(id); err != nil {
		return "", err
	}
	return id, nil
}

func isIdentityChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '@', c == ':', c == '-':
		return true
	}
	return false
}

// NewEventID returns a random identifier for an emitted event
func NewEventID() string {
	return uuid.NewString()
}
