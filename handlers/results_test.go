// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/registry"
	"github.com/danielhkuo/pollvote/store"
	"github.com/danielhkuo/pollvote/testutil"
)

func TestDetails(t *testing.T) {
	te := newTestEnv(t, cliparse.OutputJSON, store.NewMemoryStore())
	te.createPoll(t, "alice", "rahul", "modi", "yash")

	out, err := te.run(te.polls.Details, "--owner", "alice", "--poll", "0")
	require.NoError(t, err)

	var d models.PollDetails
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "PM of India?", d.Title)
	assert.Equal(t, []string{"rahul", "modi", "yash"}, d.Options)
	assert.Equal(t, []uint64{0, 0, 0}, d.Votes)
	assert.Equal(t, models.StatusPending, d.WinnerStatus)
	assert.Nil(t, d.Winner)
	assert.True(t, testutil.Epoch.Add(500*time.Second).Equal(d.ExpiresAt))
}

func TestDetails_Errors(t *testing.T) {
	te := newTestEnv(t, cliparse.OutputJSON, store.NewMemoryStore())
	te.createPoll(t, "alice", "rahul", "modi")

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		wantCode int
	}{
		{"unknown owner", []string{"--owner", "bob", "--poll", "0"}, registry.ErrPollNotFound, middleware.ExitNotFound},
		{"unknown index", []string{"--owner", "alice", "--poll", "1"}, registry.ErrPollNotFound, middleware.ExitNotFound},
		{"missing poll", []string{"--owner", "alice"}, nil, middleware.ExitUsage},
		{"negative poll", []string{"--owner", "alice", "--poll", "-1"}, nil, middleware.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := te.run(te.polls.Details, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCode, middleware.ExitCode(err))
		})
	}
}

func TestDetails_TextOutput(t *testing.T) {
	te := newTestEnv(t, cliparse.OutputText, store.NewMemoryStore())
	te.createPoll(t, "alice", "rahul", "modi", "yash")

	for i, option := range []string{"1", "1", "0"} {
		_, err := te.run(te.voting.Vote, "-c", []string{"bob", "carol", "dave"}[i],
			"--owner", "alice", "--poll", "0", "--option", option)
		require.NoError(t, err)
	}

	out, err := te.run(te.polls.Details, "--owner", "alice", "--poll", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "alice/0  PM of India?")
	assert.Contains(t, out, "open, closes")
	assert.Contains(t, out, "from now")
	assert.Contains(t, out, "total votes: 3")
	assert.NotContains(t, out, "winner")

	te.clock.Advance(time.Hour)

	out, err = te.run(te.polls.Details, "--owner", "alice", "--poll", "0")
	require.NoError(t, err)
	assert.Contains(t, out, `winner "modi"`)
	assert.Contains(t, out, "ago")
	assert.Contains(t, out, "66.7%  <- winner")
}

func TestStatusLine(t *testing.T) {
	now := testutil.Epoch
	d := &models.PollDetails{
		ExpiresAt:    now.Add(2 * time.Hour),
		WinnerStatus: models.StatusPending,
	}
	assert.Equal(t, "open, closes 2 hours from now", statusLine(d, now))

	d.ExpiresAt = now.Add(-3 * time.Minute)
	d.WinnerStatus = models.StatusDecided
	d.Winner = &models.Winner{Index: 0, Label: "rahul"}
	assert.Equal(t, `closed 3 minutes ago, winner "rahul"`, statusLine(d, now))
}
