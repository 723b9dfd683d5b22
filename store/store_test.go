// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/store"
	"github.com/danielhkuo/pollvote/testutil"
)

func newPoll(owner string, options ...string) *models.Poll {
	created := testutil.Epoch
	return &models.Poll{
		Owner:     owner,
		Title:     "Test Poll",
		Options:   options,
		Votes:     make([]uint64, len(options)),
		CreatedAt: created,
		ExpiresAt: created.Add(10 * time.Minute),
	}
}

// runStoreSuite checks the behaviour every Store implementation shares.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("CreateAndGet", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		p := newPoll("alice", "rahul", "modi", "yash")
		index, err := st.CreatePoll(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), index)
		assert.Equal(t, uint64(0), p.Index)

		got, err := st.GetPoll(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Owner)
		assert.Equal(t, uint64(0), got.Index)
		assert.Equal(t, "Test Poll", got.Title)
		assert.Equal(t, []string{"rahul", "modi", "yash"}, got.Options)
		assert.Equal(t, []uint64{0, 0, 0}, got.Votes)
		assert.Zero(t, got.VoterCount)
		assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, p.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("DenseIndicesPerOwner", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			index, err := st.CreatePoll(ctx, newPoll("alice", "a", "b"))
			require.NoError(t, err)
			assert.Equal(t, uint64(i), index)
		}
		index, err := st.CreatePoll(ctx, newPoll("bob", "a", "b"))
		require.NoError(t, err)
		assert.Equal(t, uint64(0), index)

		n, err := st.CountPolls(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), n)

		n, err = st.CountPolls(ctx, "carol")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("NotFound", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		_, err := st.GetPoll(ctx, "alice", 0)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.HasVoted(ctx, "alice", 0, "bob")
		assert.ErrorIs(t, err, store.ErrNotFound)

		err = st.RecordVote(ctx, "alice", 0, "bob", 0)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.CreatePoll(ctx, newPoll("alice", "a", "b"))
		require.NoError(t, err)
		err = st.RecordVote(ctx, "alice", 0, "bob", 5)
		assert.ErrorIs(t, err, store.ErrNotFound, "unknown option position")
	})

	t.Run("InvalidPoll", func(t *testing.T) {
		st := newStore(t)

		p := newPoll("alice", "a", "b")
		p.Votes = nil
		_, err := st.CreatePoll(context.Background(), p)
		assert.ErrorIs(t, err, store.ErrInvalidPoll)
	})

	t.Run("RecordVote", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		_, err := st.CreatePoll(ctx, newPoll("alice", "a", "b", "c"))
		require.NoError(t, err)

		require.NoError(t, st.RecordVote(ctx, "alice", 0, "bob", 1))
		require.NoError(t, st.RecordVote(ctx, "alice", 0, "carol", 1))
		require.NoError(t, st.RecordVote(ctx, "alice", 0, "dave", 2))

		err = st.RecordVote(ctx, "alice", 0, "bob", 0)
		assert.ErrorIs(t, err, store.ErrAlreadyVoted)

		voted, err := st.HasVoted(ctx, "alice", 0, "bob")
		require.NoError(t, err)
		assert.True(t, voted)
		voted, err = st.HasVoted(ctx, "alice", 0, "erin")
		require.NoError(t, err)
		assert.False(t, voted)

		got, err := st.GetPoll(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 2, 1}, got.Votes)
		assert.Equal(t, uint64(3), got.VoterCount)
		assert.Equal(t, got.TotalVotes(), got.VoterCount)
	})

	t.Run("GetPollReturnsCopy", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		_, err := st.CreatePoll(ctx, newPoll("alice", "a", "b"))
		require.NoError(t, err)

		got, err := st.GetPoll(ctx, "alice", 0)
		require.NoError(t, err)
		got.Votes[0] = 99
		got.Options[0] = "changed"

		again, err := st.GetPoll(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 0}, again.Votes)
		assert.Equal(t, "a", again.Options[0])
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		numPolls := 10
		indices := make(chan uint64, numPolls)
		var wg sync.WaitGroup
		for i := 0; i < numPolls; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				index, err := st.CreatePoll(ctx, newPoll("alice", "a", "b"))
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				indices <- index
			}()
		}
		wg.Wait()
		close(indices)

		seen := make(map[uint64]bool)
		for index := range indices {
			assert.False(t, seen[index], "index %d handed out twice", index)
			seen[index] = true
		}
		assert.Len(t, seen, numPolls)
		for i := 0; i < numPolls; i++ {
			assert.True(t, seen[uint64(i)], "index %d missing", i)
		}
	})

	t.Run("ReadsMatchVoterCount", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		_, err := st.CreatePoll(ctx, newPoll("alice", "a", "b", "c"))
		require.NoError(t, err)

		numVoters := 20
		done := make(chan struct{})
		var readers sync.WaitGroup
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				p, err := st.GetPoll(ctx, "alice", 0)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if p.TotalVotes() != p.VoterCount {
					t.Errorf("tally %v does not match %d voters", p.Votes, p.VoterCount)
					return
				}
			}
		}()

		var voters sync.WaitGroup
		for i := 0; i < numVoters; i++ {
			voters.Add(1)
			go func(i int) {
				defer voters.Done()
				assert.NoError(t, st.RecordVote(ctx, "alice", 0, fmt.Sprintf("voter%d", i), i%3))
			}(i)
		}
		voters.Wait()
		close(done)
		readers.Wait()

		got, err := st.GetPoll(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(numVoters), got.VoterCount)
	})

	t.Run("ConcurrentVotes", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		_, err := st.CreatePoll(ctx, newPoll("alice", "a", "b"))
		require.NoError(t, err)

		numVoters := 10
		var successCount, duplicateCount atomic.Int32
		var wg sync.WaitGroup

		// every voter tries twice; exactly one attempt each must land
		for i := 0; i < numVoters*2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				voter := fmt.Sprintf("voter%d", i%numVoters)
				err := st.RecordVote(ctx, "alice", 0, voter, i%2)
				switch {
				case err == nil:
					successCount.Add(1)
				case err == store.ErrAlreadyVoted:
					duplicateCount.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(numVoters), successCount.Load())
		assert.Equal(t, int32(numVoters), duplicateCount.Load())

		got, err := st.GetPoll(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(numVoters), got.VoterCount)
		assert.Equal(t, uint64(numVoters), got.TotalVotes())
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) store.Store {
		return testutil.SetupSQLiteStore(t)
	})
}

func TestPostgresStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) store.Store {
		return testutil.SetupPostgresStore(t)
	})
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	var n atomic.Int32
	runStoreSuite(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		client, err := store.ConnectRedis(ctx, url)
		require.NoError(t, err)

		// fresh prefix per subtest keeps runs independent
		prefix := fmt.Sprintf("pollvote-test-%d-%d", time.Now().UnixNano(), n.Add(1))
		st := store.NewRedisStore(client, prefix)
		t.Cleanup(func() {
			keys, _ := client.Keys(ctx, prefix+":*").Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
			st.Close()
		})
		return st
	})
}
