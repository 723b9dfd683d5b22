// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/models"
)

type PollHandler struct {
	env Env
}

func NewPollHandler(env Env) *PollHandler {
	return &PollHandler{env: env}
}

// Create handles `pollvote create`
func (h *PollHandler) Create(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	caller := flags.StringP("caller", "c", "", "Identity creating the poll (becomes the owner)")
	title := flags.String("title", "", "Poll title")
	options := flags.StringArray("option", nil, "Option label, repeat 2-4 times")
	duration := flags.Uint64("duration", 0, "Seconds until the poll closes (minimum 10)")

	if ok, err := parseArgs(flags, args, h.env.Out); !ok {
		return err
	}
	if err := requireFlags(flags, "caller"); err != nil {
		return err
	}

	owner, err := auth.NormalizeCaller(*caller)
	if err != nil {
		return err
	}

	index, err := h.env.Registry.CreatePoll(ctx, owner, *title, *options, *duration)
	if err != nil {
		return err
	}

	return h.env.render(models.CreatePollResponse{Owner: owner, Index: index}, func(w io.Writer) {
		fmt.Fprintf(w, "created poll %s %q\n", pollRef(owner, index), *title)
	})
}

// List handles `pollvote list`
func (h *PollHandler) List(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
	owner := flags.String("owner", "", "Owner whose polls to list")

	if ok, err := parseArgs(flags, args, h.env.Out); !ok {
		return err
	}
	if err := requireFlags(flags, "owner"); err != nil {
		return err
	}

	ownerID, err := auth.NormalizeCaller(*owner)
	if err != nil {
		return err
	}

	polls, err := h.env.Registry.ListPolls(ctx, ownerID)
	if err != nil {
		return err
	}
	if polls == nil {
		polls = []*models.PollDetails{}
	}

	now := h.env.clock().Now()
	return h.env.render(polls, func(w io.Writer) {
		if len(polls) == 0 {
			fmt.Fprintf(w, "no polls for %s\n", ownerID)
			return
		}
		for _, p := range polls {
			fmt.Fprintf(w, "%-16s %-34q %s votes, %s\n",
				pollRef(p.Owner, p.Index),
				p.Title,
				humanize.Comma(int64(p.VoterCount)),
				statusLine(p, now),
			)
		}
	})
}
