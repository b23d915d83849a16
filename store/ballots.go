// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/votexhq/votex/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyVoted      = errors.New("voter has already cast a ballot in this election")
	ErrInvalidCandidate  = errors.New("candidate does not belong to this election")
	ErrElectionNotActive = errors.New("election is not accepting ballots")
)

// BallotStore owns the vote table. It is the only component that writes
// ballots, and its counts are the ground truth the tally cache is repaired
// from.
type BallotStore struct {
	db *sql.DB
}

func NewBallotStore(db *sql.DB) *BallotStore {
	return &BallotStore{db: db}
}

// InsertIfAbsent records a ballot if and only if no ballot exists for
// (voterID, electionID). The caller has already checked role and election
// activity, but both are re-validated here: rosters and election state are
// external and can change between the caller's check and the insert.
//
// Concurrent calls for the same pair race on the vote table's unique
// constraint; exactly one insert wins and every loser gets ErrAlreadyVoted.
func (s *BallotStore) InsertIfAbsent(ctx context.Context, voterID, electionID, candidateID string, castAt time.Time) (models.Ballot, error) {
	var status string
	var startAt, endAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT status, start_at, end_at FROM election WHERE id = $1
	`, electionID).Scan(&status, &startAt, &endAt)

	if err == sql.ErrNoRows {
		return models.Ballot{}, ErrNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query election: %w", err)
	}

	if status != models.StatusActive || castAt.Before(startAt) || !castAt.Before(endAt) {
		return models.Ballot{}, ErrElectionNotActive
	}

	var belongs bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM candidate
			WHERE id = $1 AND election_id = $2
		)
	`, candidateID, electionID).Scan(&belongs)

	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to verify candidate: %w", err)
	}
	if !belongs {
		return models.Ballot{}, ErrInvalidCandidate
	}

	ballot := models.Ballot{
		ID:          uuid.NewString(),
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
		CastAt:      castAt.UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vote (id, voter_id, election_id, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ballot.ID, ballot.VoterID, ballot.ElectionID, ballot.CandidateID, ballot.CastAt)

	if err != nil {
		if isUniqueViolation(err) {
			return models.Ballot{}, ErrAlreadyVoted
		}
		return models.Ballot{}, fmt.Errorf("failed to insert ballot: %w", err)
	}

	return ballot, nil
}

// CountsFor recounts committed ballots per candidate, directly from the vote
// table. Candidates with no ballots are absent from the map.
func (s *BallotStore) CountsFor(ctx context.Context, electionID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id, COUNT(*)
		FROM vote
		WHERE election_id = $1
		GROUP BY candidate_id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count ballots: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var candidateID string
		var count int
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[candidateID] = count
	}

	return counts, rows.Err()
}

// HasVoted reports whether a committed ballot exists for the pair. A vote
// still in flight is invisible here, which is what callers resolving an
// indeterminate submission need.
func (s *BallotStore) HasVoted(ctx context.Context, voterID, electionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE voter_id = $1 AND election_id = $2
		)
	`, voterID, electionID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to check ballot: %w", err)
	}
	return exists, nil
}

// CandidatesFor returns the election's roster in registration order.
func (s *BallotStore) CandidatesFor(ctx context.Context, electionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, name, party, manifesto, position, created_at
		FROM candidate
		WHERE election_id = $1
		ORDER BY position
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		var party, manifesto sql.NullString
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &party, &manifesto, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Party = party.String
		c.Manifesto = manifesto.String
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// isUniqueViolation recognizes duplicate-key errors from both supported
// drivers: pq reports SQLSTATE 23505, modernc sqlite reports a message
// containing "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
