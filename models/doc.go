// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, response, and error types shared by the
registry, the stores, and the command handlers.

# Domain Types

  - Poll: stored poll state (owner, index, title, options, tally, expiry)
  - PollDetails: read model with the winner block
  - Winner: the resolved option once a poll has expired
  - Policy: creation limits (option count, minimum duration, label size)

# Response Types

Types for command output:

  - CreatePollResponse: owner, index
  - CastVoteResponse: owner, index, option
  - HasVotedResponse: owner, index, voter, voted
  - ErrorResponse: error, message

# Constants

Winner status values:

	StatusPending = "pending"
	StatusDecided = "decided"

Default creation policy:

	MinOptions         = 2
	MaxOptions         = 4
	MinDurationSeconds = 10
	MaxLabelBytes      = 32
*/
package models
