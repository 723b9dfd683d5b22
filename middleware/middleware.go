// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/registry"
)

// Exit codes
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// CommandFunc runs one command with the arguments that follow its name
type CommandFunc func(ctx context.Context, args []string) error

// UsageError reports bad command-line input
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Usagef builds a UsageError from a format string
func Usagef(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// SetupLogging installs the default slog logger writing to w.
// Terminals get the text handler, everything else gets JSON.
func SetupLogging(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// WithLogging wraps a command with start/finish logging
func WithLogging(name string, next CommandFunc) CommandFunc {
	return func(ctx context.Context, args []string) error {
		start := time.Now()

		slog.Debug("command started", "command", name, "args", len(args))

		err := next(ctx, args)

		duration := time.Since(start)
		if err != nil && ExitCode(err) == ExitInternal {
			slog.Error("command failed",
				"command", name,
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
			return err
		}
		slog.Debug("command completed",
			"command", name,
			"duration_ms", duration.Milliseconds(),
			"ok", err == nil,
		)
		return err
	}
}

// JSONResponse writes data as indented JSON
func JSONResponse(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// ErrorResponse writes err in the configured output format
func ErrorResponse(w io.Writer, output string, err error) {
	if output == cliparse.OutputJSON {
		JSONResponse(w, models.ErrorResponse{
			Error:   ErrorKind(err),
			Message: err.Error(),
		})
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// errorKinds is checked in order; the first match names the error
var errorKinds = []struct {
	target error
	kind   string
}{
	{registry.ErrInvalidCaller, "invalid_caller"},
	{registry.ErrInvalidTitle, "invalid_title"},
	{registry.ErrInvalidOptionLength, "invalid_option_length"},
	{registry.ErrInvalidOptionLabel, "invalid_option_label"},
	{registry.ErrInvalidTime, "invalid_time"},
	{registry.ErrPollNotFound, "poll_not_found"},
	{registry.ErrInvalidOptionIndex, "invalid_option_index"},
	{registry.ErrDuplicateVote, "duplicate_vote"},
	{registry.ErrPollExpired, "poll_expired"},
}

// ErrorKind returns a stable machine-readable name for err
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return "usage"
	}
	return "internal"
}

// ExitCode maps err to the process exit status
func ExitCode(err error) int {
	var usage *UsageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, registry.ErrPollNotFound):
		return ExitNotFound
	case registry.IsValidation(err), errors.As(err, &usage):
		return ExitUsage
	default:
		return ExitInternal
	}
}
