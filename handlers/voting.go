// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/models"
)

type VotingHandler struct {
	env Env
}

func NewVotingHandler(env Env) *VotingHandler {
	return &VotingHandler{env: env}
}

// Vote handles `pollvote vote`
func (h *VotingHandler) Vote(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("vote", pflag.ContinueOnError)
	caller := flags.StringP("caller", "c", "", "Identity casting the vote")
	owner := flags.String("owner", "", "Poll owner")
	index := flags.Uint64("poll", 0, "Poll index within the owner's namespace")
	option := flags.Int("option", 0, "Zero-based option index")

	if ok, err := parseArgs(flags, args, h.env.Out); !ok {
		return err
	}
	if err := requireFlags(flags, "caller", "owner", "poll", "option"); err != nil {
		return err
	}

	voter, err := auth.NormalizeCaller(*caller)
	if err != nil {
		return err
	}
	ownerID, err := auth.NormalizeCaller(*owner)
	if err != nil {
		return err
	}

	if err := h.env.Registry.CastVote(ctx, voter, ownerID, *index, *option); err != nil {
		return err
	}

	return h.env.render(models.CastVoteResponse{Owner: ownerID, Index: *index, Option: *option}, func(w io.Writer) {
		fmt.Fprintf(w, "%s voted for option %d in %s\n", voter, *option, pollRef(ownerID, *index))
	})
}

// Voted handles `pollvote voted`
func (h *VotingHandler) Voted(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("voted", pflag.ContinueOnError)
	owner := flags.String("owner", "", "Poll owner")
	index := flags.Uint64("poll", 0, "Poll index within the owner's namespace")
	voter := flags.String("voter", "", "Identity to look up")

	if ok, err := parseArgs(flags, args, h.env.Out); !ok {
		return err
	}
	if err := requireFlags(flags, "owner", "poll", "voter"); err != nil {
		return err
	}

	ownerID, err := auth.NormalizeCaller(*owner)
	if err != nil {
		return err
	}
	voterID, err := auth.NormalizeCaller(*voter)
	if err != nil {
		return err
	}

	voted, err := h.env.Registry.HasVoted(ctx, ownerID, *index, voterID)
	if err != nil {
		return err
	}

	resp := models.HasVotedResponse{Owner: ownerID, Index: *index, Voter: voterID, Voted: voted}
	return h.env.render(resp, func(w io.Writer) {
		if voted {
			fmt.Fprintf(w, "%s has voted in %s\n", voterID, pollRef(ownerID, *index))
			return
		}
		fmt.Fprintf(w, "%s has not voted in %s\n", voterID, pollRef(ownerID, *index))
	})
}
