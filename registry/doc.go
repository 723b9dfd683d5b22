// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registry implements the poll/vote state machine.

# Operations

	reg := registry.New(store.NewMemoryStore(), registry.WithSink(sink))

	index, err := reg.CreatePoll(ctx, "alice", "Lunch?", []string{"pizza", "sushi"}, 600)
	err = reg.CastVote(ctx, "bob", "alice", index, 1)
	details, err := reg.GetPollDetails(ctx, "alice", index)

PollCount, ListPolls and HasVoted are read-only helpers over the same state.

# Creation Rules

Checked in this order, first failure wins:

  - caller must be a valid identity        → ErrInvalidCaller
  - title non-empty, at most 32 bytes      → *InvalidTitleError
  - 2 to 4 options                         → *InvalidOptionLengthError
  - duration at least 10 seconds           → *InvalidTimeError
  - every label non-empty, at most 32 bytes → *InvalidOptionLabelError

The poll expires at creation time plus the duration. Indices are per owner,
dense, starting at 0.

# Voting Rules

  - poll must exist                 → ErrPollNotFound
  - option within [0, len(options)) → *InvalidOptionIndexError
  - caller has not voted yet        → *DuplicateVoteError
  - poll not expired                → *PollExpiredError

# Winner

Before expiry WinnerStatus is "pending" and Winner is nil. From the expiry
second on, Winner is the option with the most votes; ties, including a poll
with no votes, resolve to the lowest option index.

# Ordering

A single mutex is held for the whole of every call, so calls are applied one at
a time and each observes every earlier call. A call that fails validation writes
nothing. Events are emitted after the store write and a failing sink is only
logged.

Typed errors match their sentinel with errors.Is:

	var dup *registry.DuplicateVoteError
	errors.As(err, &dup)                       // dup.Voter
	errors.Is(err, registry.ErrDuplicateVote)  // true
*/
package registry
