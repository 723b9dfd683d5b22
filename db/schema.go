// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are unix seconds so the same schema runs on sqlite and postgres.
const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    owner TEXT NOT NULL,
    poll_index BIGINT NOT NULL,
    title TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    expires_at BIGINT NOT NULL,
    PRIMARY KEY (owner, poll_index)
);

-- Options and their tallies
CREATE TABLE IF NOT EXISTS poll_option (
    owner TEXT NOT NULL,
    poll_index BIGINT NOT NULL,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    votes BIGINT NOT NULL DEFAULT 0 CHECK (votes >= 0),
    PRIMARY KEY (owner, poll_index, position),
    FOREIGN KEY (owner, poll_index) REFERENCES poll(owner, poll_index) ON DELETE CASCADE
);

-- Voters (one row per voter per poll)
CREATE TABLE IF NOT EXISTS poll_voter (
    owner TEXT NOT NULL,
    poll_index BIGINT NOT NULL,
    voter TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (owner, poll_index, voter),
    FOREIGN KEY (owner, poll_index) REFERENCES poll(owner, poll_index) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_poll_voter_poll ON poll_voter(owner, poll_index);
`
