// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity checks and identifier generation.

# Caller Identities

Callers are authenticated by whatever invokes the registry; this package only
checks that the identifier is well formed:

	err := auth.ValidateCaller("0xA11ce")
	id, err := auth.NormalizeCaller("  alice  ") // "alice"

Identities are 1-64 bytes of letters, digits, and . _ @ : -
Anything else returns ErrInvalidCaller. No signatures are verified here.

# Event IDs

Every emitted event gets a random UUID:

	id := auth.NewEventID()
*/
package auth
