// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: title, description, start_at, end_at
  - AddCandidateRequest: name, party, manifesto
  - UpdateStatusRequest: status
  - SubmitVoteRequest: voter_id, candidate_id, election_id

# Response Types

Types for JSON responses:

  - CreateElectionResponse: election_id
  - AddCandidateResponse: candidate_id
  - UpdateStatusResponse: election_id, status
  - SubmitVoteResponse: receipt, message
  - HasVotedResponse: has_voted
  - ResultsResponse: election_id, total_votes, results
  - ErrorResponse: error, message, kind

# Domain Types

Internal data structures:

  - Election: election metadata and lifecycle state
  - Candidate: roster entry with 1-indexed registration order
  - Ballot: one voter's immutable choice in one election
  - VoteReceipt: proof of an accepted ballot
  - TallyEntry: one candidate's count and percentage in the tally
  - TallyEvent: tally change notification for live subscribers

# Constants

Election status values:

	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"

Caller roles:

	RoleVoter     = "voter"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"

Error kinds (ErrorResponse.Kind):

	KindAlreadyVoted       = "already_voted"
	KindInvalidCandidate   = "invalid_candidate"
	KindElectionNotActive  = "election_not_active"
	KindStorageUnavailable = "storage_unavailable"
*/
package models
