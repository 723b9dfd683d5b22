// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the pollvote command.

pollvote keeps a registry of short-lived polls. Any identity can create polls in
its own namespace (indexed 0, 1, 2, ...), every other identity can vote once per
poll, and once a poll's deadline passes its winner is the option with the most
votes (lowest index on a tie).

# Usage

	pollvote [global flags] <command> [command flags]

	pollvote create -c alice --title "PM of India?" \
		--option rahul --option modi --option yash --duration 500
	pollvote vote -c bob --owner alice --poll 0 --option 1
	pollvote details --owner alice --poll 0
	pollvote -o json list --owner alice

# Configuration

Storage defaults to a sqlite file (polls.db) in the working directory:

	STORE_TYPE=postgres DATABASE_URL=postgres://... pollvote list --owner alice
	pollvote -t redis --redis-url redis://localhost:6379/0 details --owner alice --poll 0

Set AMQP_URL (--amqp-url) to publish poll_created and vote_cast events to a
RabbitMQ queue as well as the log. See package cliparse for every flag.

# Exit Status

	0  success
	1  internal error (storage, broker)
	2  usage or rejected request
	3  poll not found

# Architecture

  - registry: poll rules, serialized behind one mutex
  - store: memory, sql (sqlite/postgres) and redis persistence
  - events: poll event sinks (slog, AMQP)
  - handlers: command handlers
  - router: command dispatch
  - middleware: logging, output and exit codes
  - models: data and response types
  - auth: identity validation and event IDs
  - db: connection and schema
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
