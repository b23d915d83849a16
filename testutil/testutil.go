// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/votexhq/votex/auth"
	"github.com/votexhq/votex/cliparse"
	"github.com/votexhq/votex/db"
)

// TestJWTSecret signs and verifies tokens in tests.
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a fresh sqlite test database with the full schema.
// The database file lives in the test's temp directory and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "votex_test.db")

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           4000,
		DatabaseType:   "sqlite",
		JWTSecret:      TestJWTSecret,
		ReconcileEvery: time.Minute,
	}
}

// SignTestToken returns a bearer token for the given subject and role.
func SignTestToken(t *testing.T, subject, role string) string {
	t.Helper()

	token, err := auth.SignToken(subject, role, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}

// CreateTestElection creates an election and returns its ID.
// status should be "upcoming", "active", or "completed"; the voting window is
// chosen to match the status.
func CreateTestElection(t *testing.T, conn *sql.DB, status string) string {
	t.Helper()

	now := time.Now().UTC()
	var startAt, endAt time.Time
	switch status {
	case "active":
		startAt, endAt = now.Add(-time.Hour), now.Add(time.Hour)
	case "completed":
		startAt, endAt = now.Add(-2*time.Hour), now.Add(-time.Hour)
	default:
		startAt, endAt = now.Add(time.Hour), now.Add(2*time.Hour)
	}

	electionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO election (id, title, description, start_at, end_at, status, created_by, created_at)
		VALUES ($1, 'Test Election', 'A test election', $2, $3, $4, 'admin-1', $5)
	`, electionID, startAt, endAt, status, now)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

// AddTestCandidate appends a candidate to an election's roster and returns
// the candidate ID. Position follows insertion order.
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()

	var position int
	err := conn.QueryRow(`
		SELECT COUNT(*) + 1 FROM candidate WHERE election_id = $1
	`, electionID).Scan(&position)
	if err != nil {
		t.Fatalf("Failed to compute candidate position: %v", err)
	}

	candidateID := uuid.NewString()
	_, err = conn.Exec(`
		INSERT INTO candidate (id, election_id, name, party, manifesto, position, created_at)
		VALUES ($1, $2, $3, 'Independent', '', $4, $5)
	`, candidateID, electionID, name, position, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CastTestBallot inserts a ballot directly, bypassing validation.
func CastTestBallot(t *testing.T, conn *sql.DB, voterID, electionID, candidateID string) string {
	t.Helper()

	ballotID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, voter_id, election_id, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ballotID, voterID, electionID, candidateID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test ballot: %v", err)
	}

	return ballotID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
