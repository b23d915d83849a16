// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/votexhq/votex/cliparse"
	"github.com/votexhq/votex/handlers"
	"github.com/votexhq/votex/live"
	"github.com/votexhq/votex/middleware"
	"github.com/votexhq/votex/models"
	"github.com/votexhq/votex/store"
	"github.com/votexhq/votex/tally"
	"github.com/votexhq/votex/vote"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(cfg cliparse.Config, gateway *vote.Gateway, ballots *store.BallotStore, elections *store.ElectionStore, engine *tally.Engine, broadcaster *live.Broadcaster) *http.ServeMux {
	mux := http.NewServeMux()

	electionHandler := handlers.NewElectionHandler(elections, ballots, cfg)
	votingHandler := handlers.NewVotingHandler(gateway, ballots, cfg)
	resultsHandler := handlers.NewResultsHandler(elections, engine, broadcaster, cfg)

	secret := cfg.JWTSecret

	// Election management (admin only)
	mux.HandleFunc("POST /api/elections",
		middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, electionHandler.CreateElection)))
	mux.HandleFunc("POST /api/elections/{id}/candidates",
		middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, electionHandler.AddCandidate)))
	mux.HandleFunc("PUT /api/elections/{id}/status",
		middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, electionHandler.UpdateStatus)))

	// Voting (authenticated)
	mux.HandleFunc("POST /api/votes",
		middleware.WithLogging(middleware.WithAuth(secret, votingHandler.SubmitVote)))
	mux.HandleFunc("GET /api/elections/{id}/has-voted",
		middleware.WithLogging(middleware.WithAuth(secret, votingHandler.HasVoted)))

	// Public reads
	mux.HandleFunc("GET /api/elections",
		middleware.WithLogging(electionHandler.ListElections))
	mux.HandleFunc("GET /api/elections/{id}",
		middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("GET /api/elections/{id}/results",
		middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /api/elections/{id}/results/live",
		middleware.WithLogging(resultsHandler.StreamResults))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Root
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("votex API v1"))
	})

	return mux
}
