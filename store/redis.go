// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/danielhkuo/pollvote/models"
)

var _ Store = (*RedisStore)(nil)

// redisPoll is the immutable part of a poll, stored as JSON.
type redisPoll struct {
	Title     string   `json:"title"`
	Options   []string `json:"options"`
	CreatedAt int64    `json:"created_at"`
	ExpiresAt int64    `json:"expires_at"`
}

// RedisStore keeps each poll in four keys:
//
//	<prefix>:owner:<owner>:count          next index for the owner
//	<prefix>:poll:<owner>:<index>         JSON metadata
//	<prefix>:poll:<owner>:<index>:votes   hash position -> counter
//	<prefix>:poll:<owner>:<index>:voters  set of voters
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pollvote"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// ConnectRedis accepts either a redis:// URL or a bare host:port and pings
// the server before returning.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		url = "localhost:6379"
	}

	var opts *redis.Options
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) countKey(owner string) string {
	return s.prefix + ":owner:" + owner + ":count"
}

func (s *RedisStore) pollKey(owner string, index uint64) string {
	return s.prefix + ":poll:" + owner + ":" + strconv.FormatUint(index, 10)
}

func (s *RedisStore) votesKey(owner string, index uint64) string {
	return s.pollKey(owner, index) + ":votes"
}

func (s *RedisStore) votersKey(owner string, index uint64) string {
	return s.pollKey(owner, index) + ":voters"
}

func (s *RedisStore) CreatePoll(ctx context.Context, p *models.Poll) (uint64, error) {
	if err := checkPoll(p); err != nil {
		return 0, err
	}

	meta, err := json.Marshal(redisPoll{
		Title:     p.Title,
		Options:   p.Options,
		CreatedAt: p.CreatedAt.Unix(),
		ExpiresAt: p.ExpiresAt.Unix(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode poll: %w", err)
	}

	countKey := s.countKey(p.Owner)
	var index uint64

	txf := func(tx *redis.Tx) error {
		next, err := tx.Get(ctx, countKey).Uint64()
		if err != nil && err != redis.Nil {
			return err
		}
		index = next

		fields := make([]interface{}, 0, 2*len(p.Options))
		for i := range p.Options {
			fields = append(fields, strconv.Itoa(i), 0)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.pollKey(p.Owner, index), meta, 0)
			pipe.HSet(ctx, s.votesKey(p.Owner, index), fields...)
			pipe.Set(ctx, countKey, index+1, 0)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, countKey); err != nil {
		return 0, fmt.Errorf("failed to create poll: %w", err)
	}

	p.Index = index
	return index, nil
}

func (s *RedisStore) GetPoll(ctx context.Context, owner string, index uint64) (*models.Poll, error) {
	// MULTI so the tally and the voter set are read at the same instant
	var metaCmd *redis.StringCmd
	var countsCmd *redis.StringStringMapCmd
	var votersCmd *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		metaCmd = pipe.Get(ctx, s.pollKey(owner, index))
		countsCmd = pipe.HGetAll(ctx, s.votesKey(owner, index))
		votersCmd = pipe.SCard(ctx, s.votersKey(owner, index))
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read poll: %w", err)
	}

	raw, err := metaCmd.Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	meta, err := decodeMeta(raw)
	if err != nil {
		return nil, err
	}

	counts, err := countsCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tally: %w", err)
	}
	voters, err := votersCmd.Uint64()
	if err != nil {
		return nil, fmt.Errorf("failed to count voters: %w", err)
	}

	p := &models.Poll{
		Owner:      owner,
		Index:      index,
		Title:      meta.Title,
		Options:    meta.Options,
		Votes:      make([]uint64, len(meta.Options)),
		VoterCount: voters,
		CreatedAt:  time.Unix(meta.CreatedAt, 0).UTC(),
		ExpiresAt:  time.Unix(meta.ExpiresAt, 0).UTC(),
	}
	for i := range p.Votes {
		raw, ok := counts[strconv.Itoa(i)]
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt counter for option %d: %w", i, err)
		}
		p.Votes[i] = n
	}
	return p, nil
}

func (s *RedisStore) CountPolls(ctx context.Context, owner string) (uint64, error) {
	n, err := s.client.Get(ctx, s.countKey(owner)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count polls: %w", err)
	}
	return n, nil
}

func (s *RedisStore) HasVoted(ctx context.Context, owner string, index uint64, voter string) (bool, error) {
	n, err := s.client.Exists(ctx, s.pollKey(owner, index)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query poll: %w", err)
	}
	if n == 0 {
		return false, ErrNotFound
	}

	voted, err := s.client.SIsMember(ctx, s.votersKey(owner, index), voter).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query voter: %w", err)
	}
	return voted, nil
}

// recordVoteScript adds the voter and bumps the counter in one atomic step.
// Returns -1 for a missing poll or option, 0 for a repeat voter, 1 on success.
var recordVoteScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('HEXISTS', KEYS[3], ARGV[2]) == 0 then return -1 end
if redis.call('SADD', KEYS[2], ARGV[1]) == 0 then return 0 end
redis.call('HINCRBY', KEYS[3], ARGV[2], 1)
return 1
`)

func (s *RedisStore) RecordVote(ctx context.Context, owner string, index uint64, voter string, option int) error {
	if option < 0 {
		return ErrNotFound
	}

	keys := []string{
		s.pollKey(owner, index),
		s.votersKey(owner, index),
		s.votesKey(owner, index),
	}
	res, err := recordVoteScript.Run(ctx, s.client, keys, voter, strconv.Itoa(option)).Int()
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	switch res {
	case -1:
		return ErrNotFound
	case 0:
		return ErrAlreadyVoted
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// watch runs txf under WATCH keys, retrying when another client touched a
// watched key first.
func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return redis.TxFailedErr
}

func decodeMeta(raw []byte) (*redisPoll, error) {
	var meta redisPoll
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode poll: %w", err)
	}
	return &meta, nil
}
