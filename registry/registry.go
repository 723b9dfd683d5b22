// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/events"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/store"
)

// MaxExpiresAt is the latest deadline a poll may have. Later times do not
// survive a JSON round trip.
var MaxExpiresAt = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Registry is the poll/vote state machine. Every operation holds mu for its
// whole duration, so calls are applied one at a time in a single total order
// and a rejected call writes nothing.
type Registry struct {
	mu     sync.Mutex
	store  store.Store
	clock  Clock
	sink   events.Sink
	policy models.Policy
	logger *slog.Logger
}

type Option func(*Registry)

func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

func WithSink(s events.Sink) Option {
	return func(r *Registry) { r.sink = s }
}

func WithPolicy(p models.Policy) Option {
	return func(r *Registry) { r.policy = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func New(st store.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  st,
		clock:  SystemClock{},
		sink:   events.Discard,
		policy: models.DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// now is truncated to whole seconds, the resolution polls are stored at.
func (r *Registry) now() time.Time {
	return r.clock.Now().UTC().Truncate(time.Second)
}

// CreatePoll validates the request and stores a new poll in caller's
// namespace, returning its index. Checks run in a fixed order and the first
// failure is returned.
func (r *Registry) CreatePoll(ctx context.Context, caller, title string, options []string, durationSeconds uint64) (uint64, error) {
	if err := auth.ValidateCaller(caller); err != nil {
		return 0, err
	}
	if err := r.validateCreate(title, options, durationSeconds); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	limit := MaxExpiresAt.Unix() - now.Unix()
	if limit < 0 || durationSeconds > uint64(limit) {
		return 0, &InvalidTimeError{Seconds: durationSeconds}
	}

	poll := &models.Poll{
		Owner:     caller,
		Title:     title,
		Options:   append([]string(nil), options...),
		Votes:     make([]uint64, len(options)),
		CreatedAt: now,
		ExpiresAt: time.Unix(now.Unix()+int64(durationSeconds), 0).UTC(),
	}

	index, err := r.store.CreatePoll(ctx, poll)
	if err != nil {
		return 0, fmt.Errorf("failed to store poll: %w", err)
	}

	r.emit(ctx, events.Event{
		ID:              auth.NewEventID(),
		Kind:            events.KindPollCreated,
		Owner:           caller,
		PollIndex:       index,
		At:              now,
		Title:           title,
		OptionCount:     len(options),
		DurationSeconds: durationSeconds,
	})

	return index, nil
}

func (r *Registry) validateCreate(title string, options []string, durationSeconds uint64) error {
	p := r.policy

	if title == "" || (p.MaxLabelBytes > 0 && len(title) > p.MaxLabelBytes) {
		return &InvalidTitleError{Title: title}
	}
	if len(options) < p.MinOptions || len(options) > p.MaxOptions {
		return &InvalidOptionLengthError{Count: len(options)}
	}
	if durationSeconds < p.MinDurationSeconds {
		return &InvalidTimeError{Seconds: durationSeconds}
	}
	for i, label := range options {
		if label == "" || (p.MaxLabelBytes > 0 && len(label) > p.MaxLabelBytes) {
			return &InvalidOptionLabelError{Position: i, Label: label}
		}
	}
	return nil
}

// CastVote records caller's vote for option on the poll (owner, index).
func (r *Registry) CastVote(ctx context.Context, caller, owner string, index uint64, option int) error {
	if err := auth.ValidateCaller(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	poll, err := r.getPoll(ctx, owner, index)
	if err != nil {
		return err
	}
	if option < 0 || option >= len(poll.Options) {
		return &InvalidOptionIndexError{Option: option}
	}

	voted, err := r.store.HasVoted(ctx, owner, index, caller)
	if err != nil {
		return fmt.Errorf("failed to check voter: %w", err)
	}
	if voted {
		return &DuplicateVoteError{Voter: caller}
	}

	now := r.now()
	if poll.Expired(now) {
		return &PollExpiredError{ExpiresAt: poll.ExpiresAt}
	}

	err = r.store.RecordVote(ctx, owner, index, caller, option)
	if errors.Is(err, store.ErrAlreadyVoted) {
		// another process sharing the store got there first
		return &DuplicateVoteError{Voter: caller}
	}
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	r.emit(ctx, events.Event{
		ID:        auth.NewEventID(),
		Kind:      events.KindVoteCast,
		Owner:     owner,
		PollIndex: index,
		At:        now,
		Voter:     caller,
		Option:    option,
	})

	return nil
}

// GetPollDetails returns the tally and, once the poll has expired, the
// winner. Ties go to the lowest option index.
func (r *Registry) GetPollDetails(ctx context.Context, owner string, index uint64) (*models.PollDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, err := r.getPoll(ctx, owner, index)
	if err != nil {
		return nil, err
	}
	return details(poll, r.now()), nil
}

// PollCount returns how many polls owner has created.
func (r *Registry) PollCount(ctx context.Context, owner string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.store.CountPolls(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to count polls: %w", err)
	}
	return n, nil
}

// ListPolls returns the details of every poll owned by owner, in index order.
func (r *Registry) ListPolls(ctx context.Context, owner string) ([]*models.PollDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.store.CountPolls(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to count polls: %w", err)
	}

	now := r.now()
	list := make([]*models.PollDetails, 0, n)
	for i := uint64(0); i < n; i++ {
		poll, err := r.getPoll(ctx, owner, i)
		if err != nil {
			return nil, err
		}
		list = append(list, details(poll, now))
	}
	return list, nil
}

// HasVoted reports whether voter is in the voter set of (owner, index).
func (r *Registry) HasVoted(ctx context.Context, owner string, index uint64, voter string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	voted, err := r.store.HasVoted(ctx, owner, index, voter)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrPollNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to check voter: %w", err)
	}
	return voted, nil
}

// getPoll must be called with mu held.
func (r *Registry) getPoll(ctx context.Context, owner string, index uint64) (*models.Poll, error) {
	poll, err := r.store.GetPoll(ctx, owner, index)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	return poll, nil
}

// emit runs after the change has committed; a failing sink is logged and
// does not undo or fail the call.
func (r *Registry) emit(ctx context.Context, ev events.Event) {
	if err := r.sink.Emit(ctx, ev); err != nil {
		r.logger.WarnContext(ctx, "failed to emit event",
			"kind", ev.Kind,
			"event_id", ev.ID,
			"owner", ev.Owner,
			"poll_index", ev.PollIndex,
			"error", err,
		)
	}
}

func details(p *models.Poll, now time.Time) *models.PollDetails {
	d := &models.PollDetails{
		Owner:        p.Owner,
		Index:        p.Index,
		Title:        p.Title,
		Options:      p.Options,
		Votes:        p.Votes,
		VoterCount:   p.VoterCount,
		CreatedAt:    p.CreatedAt,
		ExpiresAt:    p.ExpiresAt,
		WinnerStatus: models.StatusPending,
	}
	if !p.Expired(now) {
		return d
	}

	d.WinnerStatus = models.StatusDecided
	best := 0
	for i, v := range p.Votes {
		if v > p.Votes[best] {
			best = i
		}
	}
	d.Winner = &models.Winner{
		Index: best,
		Label: p.Options[best],
		Votes: p.Votes[best],
	}
	return d
}
