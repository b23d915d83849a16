// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"log/slog"
	"time"

	"github.com/votexhq/votex/models"
	"github.com/votexhq/votex/store"
	"github.com/votexhq/votex/tally"
)

// Gateway is the single entry point for ballot submission. It commits the
// ballot durably first and treats the tally update as best-effort: a ballot
// that reached the store is accepted even if the projection update fails,
// since reconciliation repairs the projection later.
type Gateway struct {
	ballots *store.BallotStore
	tally   *tally.Engine
}

func NewGateway(ballots *store.BallotStore, tally *tally.Engine) *Gateway {
	return &Gateway{ballots: ballots, tally: tally}
}

// Submit validates and records one ballot, then updates the live tally.
// Rejections surface as the ballot store's sentinel errors.
func (g *Gateway) Submit(ctx context.Context, voterID, candidateID, electionID string) (models.VoteReceipt, error) {
	ballot, err := g.ballots.InsertIfAbsent(ctx, voterID, electionID, candidateID, time.Now())
	if err != nil {
		return models.VoteReceipt{}, err
	}

	// The ballot is durable at this point. Never un-accept it over a cache
	// update failure.
	if err := g.tally.OnBallotAccepted(ctx, electionID, candidateID); err != nil {
		slog.Error("tally update failed for accepted ballot",
			"ballot_id", ballot.ID,
			"election_id", electionID,
			"error", err,
		)
	}

	return models.VoteReceipt{BallotID: ballot.ID, CastAt: ballot.CastAt}, nil
}
