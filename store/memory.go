// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"

	"github.com/danielhkuo/pollvote/models"
)

var _ Store = (*MemoryStore)(nil)

type memoryPoll struct {
	poll   *models.Poll
	voters map[string]struct{}
}

// MemoryStore keeps everything in process memory. State is lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	polls map[string][]*memoryPoll
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{polls: make(map[string][]*memoryPoll)}
}

func (s *MemoryStore) CreatePoll(ctx context.Context, p *models.Poll) (uint64, error) {
	if err := checkPoll(p); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := uint64(len(s.polls[p.Owner]))
	stored := p.Clone()
	stored.Index = index
	stored.VoterCount = 0
	s.polls[p.Owner] = append(s.polls[p.Owner], &memoryPoll{
		poll:   stored,
		voters: make(map[string]struct{}),
	})
	p.Index = index
	return index, nil
}

func (s *MemoryStore) GetPoll(ctx context.Context, owner string, index uint64) (*models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mp, err := s.lookup(owner, index)
	if err != nil {
		return nil, err
	}
	return mp.poll.Clone(), nil
}

func (s *MemoryStore) CountPolls(ctx context.Context, owner string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.polls[owner])), nil
}

func (s *MemoryStore) HasVoted(ctx context.Context, owner string, index uint64, voter string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mp, err := s.lookup(owner, index)
	if err != nil {
		return false, err
	}
	_, ok := mp.voters[voter]
	return ok, nil
}

func (s *MemoryStore) RecordVote(ctx context.Context, owner string, index uint64, voter string, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mp, err := s.lookup(owner, index)
	if err != nil {
		return err
	}
	if option < 0 || option >= len(mp.poll.Votes) {
		return ErrNotFound
	}
	if _, ok := mp.voters[voter]; ok {
		return ErrAlreadyVoted
	}

	mp.voters[voter] = struct{}{}
	mp.poll.Votes[option]++
	mp.poll.VoterCount++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(owner string, index uint64) (*memoryPoll, error) {
	list := s.polls[owner]
	if index >= uint64(len(list)) {
		return nil, ErrNotFound
	}
	return list[index], nil
}
