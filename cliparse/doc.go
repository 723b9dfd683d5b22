// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles global command-line flags and configuration.

# Configuration

ParseFlags returns a Config plus the arguments left after the global flags:

	cfg, rest, err := cliparse.ParseFlags(os.Args[1:])

Parsing stops at the first non-flag argument, so rest starts with the command
name and keeps the command's own flags intact.

# CLI Flags

	-t, --store         Store type: memory, sqlite, postgres, redis (default sqlite)
	-d, --database-url  sqlite file path or postgres URL
	--redis-url         Redis URL or host:port (default localhost:6379)
	--redis-prefix      Key prefix for the redis store (default pollvote)
	--amqp-url          AMQP broker for poll events (optional)
	--amqp-queue        Queue name (default poll-events)
	--log-level         debug, info, warn, error (default info)
	-o, --output        text or json (default text)
	--env-file          .env file to load if present (default .env)

# Environment Variables

Flags fall back to environment variables:

	STORE_TYPE    → -t
	DATABASE_URL  → -d
	REDIS_URL     → --redis-url
	REDIS_PREFIX  → --redis-prefix
	AMQP_URL      → --amqp-url (RABBITMQ_URL also accepted)
	AMQP_QUEUE    → --amqp-queue
	LOG_LEVEL     → --log-level
	OUTPUT        → -o

CLI flags take precedence over environment variables, and variables already in
the environment take precedence over the env file.

# Validation

  - postgres requires a database URL
  - unknown store types and output formats are rejected
*/
package cliparse
