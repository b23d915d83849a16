package models

import "time"

// Election status constants
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Caller roles
const (
	RoleVoter     = "voter"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

// Machine-readable error kinds returned in ErrorResponse.Kind
const (
	KindAlreadyVoted       = "already_voted"
	KindInvalidCandidate   = "invalid_candidate"
	KindElectionNotActive  = "election_not_active"
	KindStorageUnavailable = "storage_unavailable"
)

// Request types

type CreateElectionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}

type AddCandidateRequest struct {
	Name      string `json:"name"`
	Party     string `json:"party"`
	Manifesto string `json:"manifesto"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SubmitVoteRequest struct {
	VoterID     string `json:"voter_id"`
	CandidateID string `json:"candidate_id"`
	ElectionID  string `json:"election_id"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type UpdateStatusResponse struct {
	ElectionID string `json:"election_id"`
	Status     string `json:"status"`
}

type SubmitVoteResponse struct {
	Receipt VoteReceipt `json:"receipt"`
	Message string      `json:"message"`
}

type HasVotedResponse struct {
	HasVoted bool `json:"has_voted"`
}

type ResultsResponse struct {
	ElectionID string       `json:"election_id"`
	TotalVotes int          `json:"total_votes"`
	Results    []TallyEntry `json:"results"`
}

type ElectionListResponse struct {
	Elections []ElectionSummary `json:"elections"`
}

// Domain types

type Election struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ElectionSummary is an Election plus aggregate counts, for list views.
type ElectionSummary struct {
	Election
	CandidateCount int `json:"candidate_count"`
	VoteCount      int `json:"vote_count"`
}

// ElectionDetail is an Election plus its candidate roster in registration
// order. EndsIn is a human-readable distance to the end of the voting window.
type ElectionDetail struct {
	Election
	Candidates []Candidate `json:"candidates"`
	EndsIn     string      `json:"ends_in"`
}

type Candidate struct {
	ID         string    `json:"id"`
	ElectionID string    `json:"election_id"`
	Name       string    `json:"name"`
	Party      string    `json:"party"`
	Manifesto  string    `json:"manifesto,omitempty"`
	Position   int       `json:"position"` // 1-indexed registration order
	CreatedAt  time.Time `json:"created_at"`
}

// Ballot is an immutable record of one voter's choice in one election.
// Exactly one may exist per (voter, election) pair.
type Ballot struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"-"` // Never expose in JSON
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

// VoteReceipt is returned to the voter after a ballot is accepted.
type VoteReceipt struct {
	BallotID string    `json:"ballot_id"`
	CastAt   time.Time `json:"cast_at"`
}

// TallyEntry is one candidate's standing in an election's tally.
// Percentage is the candidate's vote share in percent; it is 0 for every
// candidate when the election has no votes.
type TallyEntry struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Party       string  `json:"party"`
	VoteCount   int     `json:"vote_count"`
	Percentage  float64 `json:"percentage"`
}

// TallyEvent describes a single accepted ballot's effect on an election's
// tally, published to live subscribers of that election.
type TallyEvent struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	VoteCount   int    `json:"vote_count"`
	TotalVotes  int    `json:"total_votes"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
