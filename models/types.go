// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Winner status constants
const (
	StatusPending = "pending"
	StatusDecided = "decided"
)

// Creation policy defaults
const (
	MinOptions         = 2
	MaxOptions         = 4
	MinDurationSeconds = 10
	MaxLabelBytes      = 32
)

// Policy bounds what CreatePoll accepts.
type Policy struct {
	MinOptions         int
	MaxOptions         int
	MinDurationSeconds uint64
	MaxLabelBytes      int
}

// DefaultPolicy returns the policy polls are created under unless overridden.
func DefaultPolicy() Policy {
	return Policy{
		MinOptions:         MinOptions,
		MaxOptions:         MaxOptions,
		MinDurationSeconds: MinDurationSeconds,
		MaxLabelBytes:      MaxLabelBytes,
	}
}

// Domain types

// Poll is the stored state of a single poll. The voter set is kept by the
// store; VoterCount mirrors its size.
type Poll struct {
	Owner      string    `json:"owner"`
	Index      uint64    `json:"index"`
	Title      string    `json:"title"`
	Options    []string  `json:"options"`
	Votes      []uint64  `json:"votes"`
	VoterCount uint64    `json:"voter_count"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TotalVotes sums the tally
func (p *Poll) TotalVotes() uint64 {
	var total uint64
	for _, v := range p.Votes {
		total += v
	}
	return total
}

// Expired reports whether voting has closed at now.
func (p *Poll) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Clone returns a deep copy so callers can't mutate stored slices.
func (p *Poll) Clone() *Poll {
	c := *p
	c.Options = append([]string(nil), p.Options...)
	c.Votes = append([]uint64(nil), p.Votes...)
	return &c
}

type Winner struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Votes uint64 `json:"votes"`
}

// PollDetails is the read model returned by the registry.
type PollDetails struct {
	Owner        string    `json:"owner"`
	Index        uint64    `json:"index"`
	Title        string    `json:"title"`
	Options      []string  `json:"options"`
	Votes        []uint64  `json:"votes"`
	VoterCount   uint64    `json:"voter_count"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	WinnerStatus string    `json:"winner_status"`
	Winner       *Winner   `json:"winner,omitempty"` // nil while pending
}

// Response types

type CreatePollResponse struct {
	Owner string `json:"owner"`
	Index uint64 `json:"index"`
}

type CastVoteResponse struct {
	Owner  string `json:"owner"`
	Index  uint64 `json:"index"`
	Option int    `json:"option"`
}

type HasVotedResponse struct {
	Owner string `json:"owner"`
	Index uint64 `json:"index"`
	Voter string `json:"voter"`
	Voted bool   `json:"voted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
