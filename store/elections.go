// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/votexhq/votex/models"
)

var (
	ErrInvalidTransition = errors.New("invalid election status transition")
	ErrRosterFrozen      = errors.New("candidate roster is frozen once voting starts")
)

// ElectionStore manages election metadata and candidate rosters.
type ElectionStore struct {
	db *sql.DB
}

func NewElectionStore(db *sql.DB) *ElectionStore {
	return &ElectionStore{db: db}
}

// CreateElection inserts a new election in upcoming status and returns it.
func (s *ElectionStore) CreateElection(ctx context.Context, title, description string, startAt, endAt time.Time, createdBy string) (models.Election, error) {
	e := models.Election{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		StartAt:     startAt.UTC(),
		EndAt:       endAt.UTC(),
		Status:      models.StatusUpcoming,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election (id, title, description, start_at, end_at, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Title, e.Description, e.StartAt, e.EndAt, e.Status, e.CreatedBy, e.CreatedAt)

	if err != nil {
		return models.Election{}, fmt.Errorf("failed to insert election: %w", err)
	}

	return e, nil
}

// GetElection returns one election by ID.
func (s *ElectionStore) GetElection(ctx context.Context, electionID string) (models.Election, error) {
	var e models.Election
	var description, createdBy sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, start_at, end_at, status, created_by, created_at
		FROM election
		WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &description, &e.StartAt, &e.EndAt, &e.Status, &createdBy, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Election{}, ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}

	e.Description = description.String
	e.CreatedBy = createdBy.String
	return e, nil
}

// ListElections returns all elections with candidate and vote counts, newest
// voting window first.
func (s *ElectionStore) ListElections(ctx context.Context) ([]models.ElectionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.description, e.start_at, e.end_at, e.status, e.created_by, e.created_at,
		       (SELECT COUNT(*) FROM candidate c WHERE c.election_id = e.id),
		       (SELECT COUNT(*) FROM vote v WHERE v.election_id = e.id)
		FROM election e
		ORDER BY e.start_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.ElectionSummary{}
	for rows.Next() {
		var e models.ElectionSummary
		var description, createdBy sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &description, &e.StartAt, &e.EndAt, &e.Status,
			&createdBy, &e.CreatedAt, &e.CandidateCount, &e.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		e.Description = description.String
		e.CreatedBy = createdBy.String
		elections = append(elections, e)
	}

	return elections, rows.Err()
}

// UpdateStatus advances an election along upcoming → active → completed.
// Skipping a step or moving backwards fails with ErrInvalidTransition. The
// update is conditional on the expected current status so concurrent
// transitions cannot double-apply.
func (s *ElectionStore) UpdateStatus(ctx context.Context, electionID, next string) error {
	var expected string
	switch next {
	case models.StatusActive:
		expected = models.StatusUpcoming
	case models.StatusCompleted:
		expected = models.StatusActive
	default:
		return ErrInvalidTransition
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE election
		SET status = $1
		WHERE id = $2 AND status = $3
	`, next, electionID, expected)

	if err != nil {
		return fmt.Errorf("failed to update election status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing election from a wrong current status.
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM election WHERE id = $1)
		`, electionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to query election: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}

	return nil
}

// AddCandidate appends a candidate to an upcoming election's roster. Once an
// election is active the roster is immutable; a frozen roster is also what
// keeps the tally's registration-order tie-break stable.
func (s *ElectionStore) AddCandidate(ctx context.Context, electionID, name, party, manifesto string) (models.Candidate, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT status FROM election WHERE id = $1
	`, electionID).Scan(&status)

	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query election: %w", err)
	}

	if status != models.StatusUpcoming {
		return models.Candidate{}, ErrRosterFrozen
	}

	c := models.Candidate{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Name:       name,
		Party:      party,
		Manifesto:  manifesto,
		CreatedAt:  time.Now().UTC(),
	}

	// Position comes from a subquery so the insert is a single statement.
	// Two racing inserts can still collide on (election_id, position); the
	// loser retries against the fresh count.
	for attempt := 0; attempt < 3; attempt++ {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) + 1 FROM candidate WHERE election_id = $1
		`, electionID).Scan(&c.Position)
		if err != nil {
			return models.Candidate{}, fmt.Errorf("failed to compute position: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO candidate (id, election_id, name, party, manifesto, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, c.ID, c.ElectionID, c.Name, c.Party, c.Manifesto, c.Position, c.CreatedAt)

		if err == nil {
			return c, nil
		}
		if !isUniqueViolation(err) {
			return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
}
