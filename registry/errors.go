// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/pollvote/auth"
)

var (
	ErrInvalidCaller       = auth.ErrInvalidCaller
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidOptionLength = errors.New("invalid option length")
	ErrInvalidOptionLabel  = errors.New("invalid option label")
	ErrInvalidTime         = errors.New("invalid time")
	ErrPollNotFound        = errors.New("poll not found")
	ErrInvalidOptionIndex  = errors.New("invalid option index")
	ErrDuplicateVote       = errors.New("duplicate vote")
	ErrPollExpired         = errors.New("poll expired")
)

// InvalidTitleError reports an empty or oversized title.
type InvalidTitleError struct {
	Title string
}

func (e *InvalidTitleError) Error() string {
	return fmt.Sprintf("invalid title %q", e.Title)
}

func (e *InvalidTitleError) Is(target error) bool { return target == ErrInvalidTitle }

// InvalidOptionLengthError reports an option count outside the policy bounds.
type InvalidOptionLengthError struct {
	Count int
}

func (e *InvalidOptionLengthError) Error() string {
	return fmt.Sprintf("invalid option length %d", e.Count)
}

func (e *InvalidOptionLengthError) Is(target error) bool { return target == ErrInvalidOptionLength }

type InvalidOptionLabelError struct {
	Position int
	Label    string
}

func (e *InvalidOptionLabelError) Error() string {
	return fmt.Sprintf("invalid label %q for option %d", e.Label, e.Position)
}

func (e *InvalidOptionLabelError) Is(target error) bool { return target == ErrInvalidOptionLabel }

// InvalidTimeError reports a duration below the policy minimum.
type InvalidTimeError struct {
	Seconds uint64
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %d seconds", e.Seconds)
}

func (e *InvalidTimeError) Is(target error) bool { return target == ErrInvalidTime }

type InvalidOptionIndexError struct {
	Option int
}

func (e *InvalidOptionIndexError) Error() string {
	return fmt.Sprintf("invalid option index %d", e.Option)
}

func (e *InvalidOptionIndexError) Is(target error) bool { return target == ErrInvalidOptionIndex }

// DuplicateVoteError reports a voter that is already in the poll's voter set.
type DuplicateVoteError struct {
	Voter string
}

func (e *DuplicateVoteError) Error() string {
	return fmt.Sprintf("duplicate vote from %s", e.Voter)
}

func (e *DuplicateVoteError) Is(target error) bool { return target == ErrDuplicateVote }

type PollExpiredError struct {
	ExpiresAt time.Time
}

func (e *PollExpiredError) Error() string {
	return fmt.Sprintf("poll expired at %s", e.ExpiresAt.Format(time.RFC3339))
}

func (e *PollExpiredError) Is(target error) bool { return target == ErrPollExpired }

// IsValidation reports whether err is a caller-attributable rejection rather
// than an infrastructure failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidCaller,
		ErrInvalidTitle,
		ErrInvalidOptionLength,
		ErrInvalidOptionLabel,
		ErrInvalidTime,
		ErrInvalidOptionIndex,
		ErrDuplicateVote,
		ErrPollExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
