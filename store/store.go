// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/pollvote/models"
)

var (
	ErrNotFound     = errors.New("poll not found")
	ErrAlreadyVoted = errors.New("voter already voted")
	ErrInvalidPoll  = errors.New("invalid poll record")

	errTxContention = errors.New("too many concurrent writers")
)

// Attempts before giving up on an optimistic write that keeps losing its
// race (Redis WATCH, or a SQL primary key taken by another process).
const maxTxRetries = 32

// Store persists polls, tallies and voter sets. Every method is atomic with
// respect to the poll it touches.
type Store interface {
	// CreatePoll allocates the next index in p.Owner's namespace, stores p
	// under it and returns the index. p.Index is overwritten.
	CreatePoll(ctx context.Context, p *models.Poll) (uint64, error)

	// GetPoll returns a copy of the poll or ErrNotFound.
	GetPoll(ctx context.Context, owner string, index uint64) (*models.Poll, error)

	CountPolls(ctx context.Context, owner string) (uint64, error)

	HasVoted(ctx context.Context, owner string, index uint64, voter string) (bool, error)

	// RecordVote adds voter to the voter set and increments the option's
	// counter in one step. Returns ErrAlreadyVoted if voter is present and
	// ErrNotFound if the poll or option does not exist.
	RecordVote(ctx context.Context, owner string, index uint64, voter string, option int) error

	Close() error
}

func checkPoll(p *models.Poll) error {
	if p == nil || p.Owner == "" || len(p.Options) == 0 || len(p.Votes) != len(p.Options) {
		return ErrInvalidPoll
	}
	return nil
}
