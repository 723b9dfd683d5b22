// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pollvote/models"
)

var _ Store = (*SQLStore)(nil)

// SQLStore keeps polls in the tables created by db.CreateSchema. Queries use
// $N placeholders, which both lib/pq and modernc.org/sqlite accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreatePoll(ctx context.Context, p *models.Poll) (uint64, error) {
	if err := checkPoll(p); err != nil {
		return 0, err
	}

	// Another process sharing the database can take the same index between
	// our SELECT and INSERT; the primary key rejects the loser, which retries.
	for i := 0; i < maxTxRetries; i++ {
		index, err := s.insertPoll(ctx, p)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return 0, err
		}
		p.Index = index
		return index, nil
	}
	return 0, fmt.Errorf("failed to allocate poll index: %w", errTxContention)
}

func (s *SQLStore) insertPoll(ctx context.Context, p *models.Poll) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var index uint64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(poll_index) + 1, 0) FROM poll WHERE owner = $1
	`, p.Owner).Scan(&index)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate poll index: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (owner, poll_index, title, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.Owner, index, p.Title, p.CreatedAt.Unix(), p.ExpiresAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert poll: %w", err)
	}

	for position, label := range p.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (owner, poll_index, position, label, votes)
			VALUES ($1, $2, $3, $4, 0)
		`, p.Owner, index, position, label)
		if err != nil {
			return 0, fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return index, nil
}

func (s *SQLStore) GetPoll(ctx context.Context, owner string, index uint64) (*models.Poll, error) {
	p := &models.Poll{Owner: owner, Index: index}

	var createdAt, expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT title, created_at, expires_at
		FROM poll
		WHERE owner = $1 AND poll_index = $2
	`, owner, index).Scan(&p.Title, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.ExpiresAt = time.Unix(expiresAt, 0).UTC()

	// One statement, so the tally and the voter count come from one snapshot
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.label, o.votes,
			(SELECT COUNT(*) FROM poll_voter v WHERE v.owner = o.owner AND v.poll_index = o.poll_index)
		FROM poll_option o
		WHERE o.owner = $1 AND o.poll_index = $2
		ORDER BY o.position
	`, owner, index)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var votes uint64
		if err := rows.Scan(&label, &votes, &p.VoterCount); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		p.Options = append(p.Options, label)
		p.Votes = append(p.Votes, votes)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}

	return p, nil
}

func (s *SQLStore) CountPolls(ctx context.Context, owner string) (uint64, error) {
	var count uint64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM poll WHERE owner = $1", owner).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count polls: %w", err)
	}
	return count, nil
}

func (s *SQLStore) HasVoted(ctx context.Context, owner string, index uint64, voter string) (bool, error) {
	var pollExists, voted bool
	err := s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM poll WHERE owner = $1 AND poll_index = $2),
			EXISTS(SELECT 1 FROM poll_voter WHERE owner = $1 AND poll_index = $2 AND voter = $3)
	`, owner, index, voter).Scan(&pollExists, &voted)
	if err != nil {
		return false, fmt.Errorf("failed to query voter: %w", err)
	}
	if !pollExists {
		return false, ErrNotFound
	}
	return voted, nil
}

func (s *SQLStore) RecordVote(ctx context.Context, owner string, index uint64, voter string, option int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM poll_voter
			WHERE owner = $1 AND poll_index = $2 AND voter = $3
		)
	`, owner, index, voter).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query voter: %w", err)
	}
	if exists {
		return ErrAlreadyVoted
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE poll_option
		SET votes = votes + 1
		WHERE owner = $1 AND poll_index = $2 AND position = $3
	`, owner, index, option)
	if err != nil {
		return fmt.Errorf("failed to update tally: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update tally: %w", err)
	} else if n != 1 {
		return ErrNotFound
	}

	// The primary key catches a concurrent vote from another process.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll_voter (owner, poll_index, voter, position)
		VALUES ($1, $2, $3, $4)
	`, owner, index, voter, option)
	if isUniqueViolation(err) {
		return ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("failed to insert voter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
