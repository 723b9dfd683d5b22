// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls behind the Store interface.

# Implementations

  - MemoryStore: maps behind a sync.RWMutex, for tests and embedding
  - SQLStore: database/sql over sqlite or postgres (see package db)
  - RedisStore: go-redis, one JSON key plus a hash and a set per poll

All three allocate per-owner indices densely from 0 and record a vote (voter set
insert plus counter increment) as a single atomic step.

# Errors

	ErrNotFound     - poll (or option position) does not exist
	ErrAlreadyVoted - voter is already in the poll's voter set
	ErrInvalidPoll  - CreatePoll was handed a malformed record

Infrastructure failures are wrapped with fmt.Errorf and never returned as one
of the sentinels above.

# Cross-process safety

The registry serializes calls inside one process. When several processes share a
backend, SQLStore relies on the poll_voter primary key and RedisStore on a Lua
script (SADD then HINCRBY) to keep the one-vote-per-voter rule. RedisStore
allocates indices under WATCH on the owner's counter key; SQLStore retries when
another writer took the index first. GetPoll reads the tally and the voter count
together (one SQL statement, one Redis MULTI), so sum(Votes) == VoterCount holds
for every read.
*/
package store
