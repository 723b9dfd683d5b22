// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router maps pollvote command names to handlers.

# Route Registration

NewRouter builds the dispatch table from a handlers.Env:

	r := router.NewRouter(handlers.Env{Registry: reg, Out: os.Stdout, Output: cfg.Output})
	err := r.Dispatch(ctx, rest)

Every command is wrapped with middleware.WithLogging.

# Commands

Poll management:

	create   Create a poll owned by --caller
	details  Show a poll's tally and, once closed, its winner
	list     List every poll an owner has created

Voting:

	vote     Cast --caller's vote in a poll
	voted    Report whether an identity has voted in a poll

help, -h and --help print the summary. An empty or unknown command is a
middleware.UsageError.
*/
package router
