// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"fmt"
	"io"

	"github.com/danielhkuo/pollvote/handlers"
	"github.com/danielhkuo/pollvote/middleware"
)

type route struct {
	name    string
	summary string
	run     middleware.CommandFunc
}

// Router dispatches a command name to its handler
type Router struct {
	routes []route
	byName map[string]middleware.CommandFunc
	out    io.Writer
}

func NewRouter(env handlers.Env) *Router {
	r := &Router{
		byName: make(map[string]middleware.CommandFunc),
		out:    env.Out,
	}

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(env)
	votingHandler := handlers.NewVotingHandler(env)

	// Poll management
	r.handle("create", "Create a poll owned by --caller", pollHandler.Create)
	r.handle("details", "Show a poll's tally and, once closed, its winner", pollHandler.Details)
	r.handle("list", "List every poll an owner has created", pollHandler.List)

	// Voting
	r.handle("vote", "Cast --caller's vote in a poll", votingHandler.Vote)
	r.handle("voted", "Report whether an identity has voted in a poll", votingHandler.Voted)

	return r
}

func (r *Router) handle(name, summary string, run middleware.CommandFunc) {
	wrapped := middleware.WithLogging(name, run)
	r.routes = append(r.routes, route{name: name, summary: summary, run: wrapped})
	r.byName[name] = wrapped
}

// Dispatch runs the command named by args[0] with the remaining arguments
func (r *Router) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.Usage(r.out)
		return middleware.Usagef("no command given")
	}

	switch args[0] {
	case "help", "-h", "--help":
		r.Usage(r.out)
		return nil
	}

	run, ok := r.byName[args[0]]
	if !ok {
		return middleware.Usagef("unknown command %q (run 'pollvote help')", args[0])
	}
	return run(ctx, args[1:])
}

// Usage prints the command summary
func (r *Router) Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: pollvote [global flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, rt := range r.routes {
		fmt.Fprintf(w, "  %-8s %s\n", rt.name, rt.summary)
	}
	fmt.Fprintf(w, "  %-8s %s\n", "help", "Show this message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pollvote <command> --help' for a command's flags.")
}
