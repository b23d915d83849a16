// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/votexhq/votex/cliparse"
	"github.com/votexhq/votex/middleware"
	"github.com/votexhq/votex/models"
	"github.com/votexhq/votex/store"
	"github.com/votexhq/votex/vote"
)

// VotingHandler handles ballot submission and vote-status endpoints.
type VotingHandler struct {
	gateway *vote.Gateway
	ballots *store.BallotStore
	cfg     cliparse.Config
}

func NewVotingHandler(gateway *vote.Gateway, ballots *store.BallotStore, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{gateway: gateway, ballots: ballots, cfg: cfg}
}

// SubmitVote handles POST /api/votes. The caller must hold the voter role and
// can only cast a ballot as themselves.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok || actor.Role != models.RoleVoter {
		middleware.ErrorResponse(w, http.StatusForbidden, "Requires voter privileges")
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ElectionID == "" || req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id and candidate_id are required")
		return
	}

	// The ballot is always attributed to the authenticated caller; a body
	// naming someone else is rejected rather than silently rewritten.
	if req.VoterID != "" && req.VoterID != actor.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot cast a ballot for another voter")
		return
	}

	receipt, err := h.gateway.Submit(r.Context(), actor.ID, req.CandidateID, req.ElectionID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyVoted):
			middleware.ErrorKindResponse(w, http.StatusConflict, models.KindAlreadyVoted,
				"You have already voted in this election")
		case errors.Is(err, store.ErrInvalidCandidate):
			middleware.ErrorKindResponse(w, http.StatusBadRequest, models.KindInvalidCandidate,
				"Candidate does not belong to this election")
		case errors.Is(err, store.ErrElectionNotActive):
			middleware.ErrorKindResponse(w, http.StatusConflict, models.KindElectionNotActive,
				"Election is not accepting votes")
		case errors.Is(err, store.ErrNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		default:
			// Indeterminate outcome: the client should check has-voted before
			// retrying, so surface it as unavailable rather than a plain 500.
			slog.Error("vote submission failed",
				"election_id", req.ElectionID,
				"client_ip", middleware.GetClientIP(r),
				"error", err,
			)
			middleware.ErrorKindResponse(w, http.StatusServiceUnavailable, models.KindStorageUnavailable,
				"Vote could not be recorded, check your vote status before retrying")
		}
		return
	}

	slog.Info("vote recorded",
		"ballot_id", receipt.BallotID,
		"election_id", req.ElectionID,
		"client_ip", middleware.GetClientIP(r),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		Receipt: receipt,
		Message: "Vote recorded successfully",
	})
}

// HasVoted handles GET /api/elections/{id}/has-voted. Voters see their own
// status; checking another voter requires the admin role.
func (h *VotingHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	electionID := r.PathValue("id")

	voterID := r.URL.Query().Get("voter_id")
	if voterID == "" {
		voterID = actor.ID
	}
	if voterID != actor.ID && actor.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot check another voter's status")
		return
	}

	hasVoted, err := h.ballots.HasVoted(r.Context(), voterID, electionID)
	if err != nil {
		slog.Error("failed to check vote status", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to check vote status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{
		HasVoted: hasVoted,
	})
}
