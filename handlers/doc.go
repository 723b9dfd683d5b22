// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the pollvote command handlers.

# Handler Types

Each handler is a struct built from an Env (registry, output writer, output
format, clock):

  - PollHandler: create, list, details
  - VotingHandler: vote, voted

	env := handlers.Env{Registry: reg, Out: os.Stdout, Output: cfg.Output}
	pollHandler := handlers.NewPollHandler(env)

Every command has the middleware.CommandFunc signature and parses its own flags
with a pflag.FlagSet. Missing required flags and stray arguments are reported as
middleware.UsageError; registry errors are returned unchanged so the caller can
map them to exit codes.

# Commands

	create  --caller ID --title T --option L ... --duration SECONDS
	vote    --caller ID --owner ID --poll N --option I
	details --owner ID --poll N
	list    --owner ID
	voted   --owner ID --poll N --voter ID

# Output

JSON mode writes the models response types. Text mode is for people: vote
counts go through humanize.Comma and closing times through humanize.RelTime
("closes 8 minutes from now", "closed 2 hours ago").
*/
package handlers
