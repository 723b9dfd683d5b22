// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/registry"
)

// Env carries what every command handler needs.
type Env struct {
	Registry *registry.Registry
	Out      io.Writer
	Output   string
	Clock    registry.Clock // used for relative times in text output
}

func (e Env) clock() registry.Clock {
	if e.Clock == nil {
		return registry.SystemClock{}
	}
	return e.Clock
}

// render writes data as JSON, or calls text in text mode
func (e Env) render(data any, text func(w io.Writer)) error {
	if e.Output == cliparse.OutputJSON {
		return middleware.JSONResponse(e.Out, data)
	}
	text(e.Out)
	return nil
}

// parseArgs parses a command's flags. It returns false when the command
// should stop without error, which happens after printing help.
func parseArgs(flags *pflag.FlagSet, args []string, out io.Writer) (bool, error) {
	flags.SetOutput(io.Discard)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage of %s:\n%s", flags.Name(), flags.FlagUsages())
			return false, nil
		}
		return false, middleware.Usagef("%s: %v", flags.Name(), err)
	}
	if flags.NArg() > 0 {
		return false, middleware.Usagef("%s: unexpected argument %q", flags.Name(), flags.Arg(0))
	}
	return true, nil
}

// requireFlags fails when any of names was not set on the command line
func requireFlags(flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if !flags.Changed(name) {
			return middleware.Usagef("%s: --%s is required", flags.Name(), name)
		}
	}
	return nil
}

func pollRef(owner string, index uint64) string {
	return fmt.Sprintf("%s/%d", owner, index)
}
