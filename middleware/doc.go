// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides command wrappers and output helpers.

# Logging Setup

SetupLogging installs the default slog logger. Logs go to stderr so they never
mix with command output:

	logger, err := middleware.SetupLogging(cfg.LogLevel, os.Stderr)

A terminal gets slog's text handler; pipes and files get JSON lines.

# Command Logging

Wrap commands with logging:

	run := middleware.WithLogging("vote", votingHandler.Vote)

Logs command start and completion (duration_ms) at debug level. Internal
failures are logged at error level.

# JSON Helpers

	middleware.JSONResponse(out, data)
	middleware.ErrorResponse(out, cfg.Output, err)

In JSON mode errors render as models.ErrorResponse:

	{
	  "error": "duplicate_vote",
	  "message": "duplicate vote: bob has already voted"
	}

# Exit Codes

	ExitOK       0  success
	ExitInternal 1  storage or other infrastructure failure
	ExitUsage    2  bad flags or a rejected request (validation, duplicate, expired)
	ExitNotFound 3  poll does not exist

Use Usagef for command-line mistakes the registry never sees.
*/
package middleware
