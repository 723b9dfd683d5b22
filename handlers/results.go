// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/models"
)

// Details handles `pollvote details`
func (h *PollHandler) Details(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("details", pflag.ContinueOnError)
	owner := flags.String("owner", "", "Poll owner")
	index := flags.Uint64("poll", 0, "Poll index within the owner's namespace")

	if ok, err := parseArgs(flags, args, h.env.Out); !ok {
		return err
	}
	if err := requireFlags(flags, "owner", "poll"); err != nil {
		return err
	}

	ownerID, err := auth.NormalizeCaller(*owner)
	if err != nil {
		return err
	}

	d, err := h.env.Registry.GetPollDetails(ctx, ownerID, *index)
	if err != nil {
		return err
	}

	now := h.env.clock().Now()
	return h.env.render(d, func(w io.Writer) {
		writeDetails(w, d, now)
	})
}

func writeDetails(w io.Writer, d *models.PollDetails, now time.Time) {
	fmt.Fprintf(w, "%s  %s\n", pollRef(d.Owner, d.Index), d.Title)
	fmt.Fprintf(w, "  %s\n", statusLine(d, now))

	total := d.VoterCount
	for i, label := range d.Options {
		votes := d.Votes[i]
		share := 0.0
		if total > 0 {
			share = float64(votes) / float64(total) * 100
		}
		marker := ""
		if d.Winner != nil && d.Winner.Index == i {
			marker = "  <- winner"
		}
		fmt.Fprintf(w, "  [%d] %-32s %8s  %5.1f%%%s\n", i, label, humanize.Comma(int64(votes)), share, marker)
	}
	fmt.Fprintf(w, "  total votes: %s\n", humanize.Comma(int64(total)))
}

// statusLine describes whether a poll is open and when it closes
func statusLine(d *models.PollDetails, now time.Time) string {
	when := humanize.RelTime(d.ExpiresAt, now, "ago", "from now")
	if d.WinnerStatus == models.StatusDecided && d.Winner != nil {
		return fmt.Sprintf("closed %s, winner %q", when, d.Winner.Label)
	}
	return fmt.Sprintf("open, closes %s", when)
}
