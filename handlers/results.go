// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/votexhq/votex/cliparse"
	"github.com/votexhq/votex/live"
	"github.com/votexhq/votex/middleware"
	"github.com/votexhq/votex/models"
	"github.com/votexhq/votex/store"
	"github.com/votexhq/votex/tally"
)

// ResultsHandler serves ranked results and the live event stream.
type ResultsHandler struct {
	elections *store.ElectionStore
	tally     *tally.Engine
	live      *live.Broadcaster
	cfg       cliparse.Config
}

func NewResultsHandler(elections *store.ElectionStore, tally *tally.Engine, live *live.Broadcaster, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{elections: elections, tally: tally, live: live, cfg: cfg}
}

// GetResults handles GET /api/elections/{id}/results.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.elections.GetElection(r.Context(), electionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to get election", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get results")
		return
	}

	results, err := h.tally.Results(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to compute results", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get results")
		return
	}

	total := 0
	for _, entry := range results {
		total += entry.VoteCount
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		ElectionID: electionID,
		TotalVotes: total,
		Results:    results,
	})
}

// StreamResults handles GET /api/elections/{id}/results/live, a server-sent
// events stream of tally updates. One event per accepted ballot, in order,
// until the client disconnects. Events are dropped rather than queued when
// the client cannot keep up.
func (h *ResultsHandler) StreamResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.elections.GetElection(r.Context(), electionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		slog.Error("failed to get election", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open stream")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	events, unsubscribe := h.live.Subscribe(electionID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	slog.Info("live stream opened",
		"election_id", electionID,
		"subscribers", h.live.SubscriberCount(electionID),
	)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				slog.Error("failed to encode tally event", "election_id", electionID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: tally\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
