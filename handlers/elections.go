// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/votexhq/votex/cliparse"
	"github.com/votexhq/votex/middleware"
	"github.com/votexhq/votex/models"
	"github.com/votexhq/votex/store"
)

// ElectionHandler handles election and roster management endpoints.
type ElectionHandler struct {
	elections *store.ElectionStore
	ballots   *store.BallotStore
	cfg       cliparse.Config
}

func NewElectionHandler(elections *store.ElectionStore, ballots *store.BallotStore, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{elections: elections, ballots: ballots, cfg: cfg}
}

// CreateElection handles POST /api/elections (admin only).
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title is required")
		return
	}
	if !req.StartAt.Before(req.EndAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voting window must start before it ends")
		return
	}

	actor, _ := middleware.ActorFrom(r.Context())

	election, err := h.elections.CreateElection(r.Context(), req.Title, req.Description, req.StartAt, req.EndAt, actor.ID)
	if err != nil {
		slog.Error("failed to create election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created",
		"election_id", election.ID,
		"title", election.Title,
		"created_by", actor.ID,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: election.ID,
	})
}

// AddCandidate handles POST /api/elections/{id}/candidates (admin only).
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate name is required")
		return
	}

	candidate, err := h.elections.AddCandidate(r.Context(), electionID, req.Name, req.Party, req.Manifesto)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		case errors.Is(err, store.ErrRosterFrozen):
			middleware.ErrorResponse(w, http.StatusConflict, "Candidates cannot be added after voting starts")
		default:
			slog.Error("failed to add candidate", "election_id", electionID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		}
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		CandidateID: candidate.ID,
	})
}

// UpdateStatus handles PUT /api/elections/{id}/status (admin only).
func (h *ElectionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.UpdateStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.elections.UpdateStatus(r.Context(), electionID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		case errors.Is(err, store.ErrInvalidTransition):
			middleware.ErrorResponse(w, http.StatusConflict, "Invalid status transition")
		default:
			slog.Error("failed to update election status", "election_id", electionID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
		}
		return
	}

	slog.Info("election status updated", "election_id", electionID, "status", req.Status)

	middleware.JSONResponse(w, http.StatusOK, models.UpdateStatusResponse{
		ElectionID: electionID,
		Status:     req.Status,
	})
}

// ListElections handles GET /api/elections.
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.elections.ListElections(r.Context())
	if err != nil {
		slog.Error("failed to list elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list elections")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionListResponse{
		Elections: elections,
	})
}

// GetElection handles GET /api/elections/{id}.
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	election, err := h.elections.GetElection(r.Context(), electionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to get election", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get election")
		return
	}

	candidates, err := h.ballots.CandidatesFor(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to get candidates", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionDetail{
		Election:   election,
		Candidates: candidates,
		EndsIn:     humanize.Time(election.EndAt),
	})
}
