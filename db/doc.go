// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Opening a Database

Open selects the driver, pings, and creates the schema:

	conn, err := db.Open(ctx, db.TypeSQLite, "polls.db")
	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")

sqlite uses modernc.org/sqlite (pure Go, no cgo) and is limited to a single
open connection. postgres uses github.com/lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: owner, poll_index, title, created_at, expires_at
  - poll_option: one row per option with its vote counter
  - poll_voter: one row per voter per poll

# Relationships

	poll 1──* poll_option
	poll 1──* poll_voter

The poll_voter primary key (owner, poll_index, voter) is what rejects a second
vote from the same voter when several processes share one database.
*/
package db
