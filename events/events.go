// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Event kinds
const (
	KindPollCreated = "poll_created"
	KindVoteCast    = "vote_cast"
)

// Event is a notification emitted after a state change has committed.
// Fields that don't apply to Kind are left zero.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Owner     string    `json:"owner"`
	PollIndex uint64    `json:"poll_index"`
	At        time.Time `json:"at"`

	// poll_created
	Title           string `json:"title,omitempty"`
	OptionCount     int    `json:"option_count,omitempty"`
	DurationSeconds uint64 `json:"duration_seconds,omitempty"`

	// vote_cast
	Voter  string `json:"voter,omitempty"`
	Option int    `json:"option"`
}

type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// LogSink writes every event as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink logs to logger, or to slog.Default() when logger is nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, ev Event) error {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"event_id", ev.ID,
		"owner", ev.Owner,
		"poll_index", ev.PollIndex,
	}
	switch ev.Kind {
	case KindPollCreated:
		attrs = append(attrs,
			"title", ev.Title,
			"option_count", ev.OptionCount,
			"duration_seconds", ev.DurationSeconds,
		)
		logger.InfoContext(ctx, "poll created", attrs...)
	case KindVoteCast:
		attrs = append(attrs, "voter", ev.Voter, "option", ev.Option)
		logger.InfoContext(ctx, "vote cast", attrs...)
	default:
		logger.InfoContext(ctx, "event", append(attrs, "kind", ev.Kind)...)
	}
	return nil
}

// MultiSink fans an event out to every sink. All sinks are tried; their
// errors are joined.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) error { return nil }
