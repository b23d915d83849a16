// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/votexhq/votex/live"
	"github.com/votexhq/votex/models"
	"github.com/votexhq/votex/store"
	"github.com/votexhq/votex/tally"
	"github.com/votexhq/votex/testutil"
	"github.com/votexhq/votex/vote"
)

func TestSubmitReturnsReceipt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ballots := store.NewBallotStore(db)
	engine := tally.NewEngine(ballots, nil)
	gateway := vote.NewGateway(ballots, engine)

	electionID := testutil.CreateTestElection(t, db, "active")
	candidateID := testutil.AddTestCandidate(t, db, electionID, "Alice")

	receipt, err := gateway.Submit(context.Background(), "voter-1", candidateID, electionID)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if receipt.BallotID == "" {
		t.Error("Expected a ballot ID in the receipt")
	}
	if receipt.CastAt.IsZero() {
		t.Error("Expected a cast timestamp in the receipt")
	}
}

func TestSubmitPublishesEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ballots := store.NewBallotStore(db)
	broadcaster := live.NewBroadcaster()
	engine := tally.NewEngine(ballots, broadcaster.Publish)
	gateway := vote.NewGateway(ballots, engine)

	electionID := testutil.CreateTestElection(t, db, "active")
	candidateID := testutil.AddTestCandidate(t, db, electionID, "Alice")

	events, unsubscribe := broadcaster.Subscribe(electionID)
	defer unsubscribe()

	if _, err := gateway.Submit(context.Background(), "voter-1", candidateID, electionID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	ev := <-events
	if ev.CandidateID != candidateID {
		t.Errorf("Expected event for %s, got %s", candidateID, ev.CandidateID)
	}
	if ev.VoteCount != 1 || ev.TotalVotes != 1 {
		t.Errorf("Expected count=1 total=1, got count=%d total=%d", ev.VoteCount, ev.TotalVotes)
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ballots := store.NewBallotStore(db)
	engine := tally.NewEngine(ballots, nil)
	gateway := vote.NewGateway(ballots, engine)

	electionID := testutil.CreateTestElection(t, db, "active")
	candidateID := testutil.AddTestCandidate(t, db, electionID, "Alice")

	if _, err := gateway.Submit(context.Background(), "voter-1", candidateID, electionID); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	_, err := gateway.Submit(context.Background(), "voter-1", candidateID, electionID)
	if !errors.Is(err, store.ErrAlreadyVoted) {
		t.Errorf("Expected ErrAlreadyVoted, got %v", err)
	}
}

// TestSubmitConservation verifies that every accepted ballot is counted
// exactly once: accepted receipts, stored ballots, and the tally total all
// agree after a concurrent burst.
func TestSubmitConservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ballots := store.NewBallotStore(db)
	engine := tally.NewEngine(ballots, nil)
	gateway := vote.NewGateway(ballots, engine)

	electionID := testutil.CreateTestElection(t, db, "active")
	alice := testutil.AddTestCandidate(t, db, electionID, "Alice")
	bob := testutil.AddTestCandidate(t, db, electionID, "Bob")

	numVoters := 30
	var accepted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			voterID := "voter-" + string(rune('A'+idx))
			candidateID := alice
			if idx%3 == 0 {
				candidateID = bob
			}
			// Each voter also fires a duplicate; exactly one of the pair wins
			if _, err := gateway.Submit(context.Background(), voterID, candidateID, electionID); err == nil {
				accepted.Add(1)
			}
			if _, err := gateway.Submit(context.Background(), voterID, candidateID, electionID); err == nil {
				accepted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(accepted.Load()) != numVoters {
		t.Errorf("Expected %d accepted ballots, got %d", numVoters, accepted.Load())
	}

	var stored int
	if err := db.QueryRow("SELECT COUNT(*) FROM vote WHERE election_id = $1", electionID).Scan(&stored); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if stored != numVoters {
		t.Errorf("Expected %d stored ballots, got %d", numVoters, stored)
	}

	results, err := engine.Results(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	total := 0
	for _, entry := range results {
		total += entry.VoteCount
	}
	if total != numVoters {
		t.Errorf("Expected tally total %d, got %d", numVoters, total)
	}
}

func TestSubmitRejectionsPassThrough(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ballots := store.NewBallotStore(db)
	engine := tally.NewEngine(ballots, nil)
	gateway := vote.NewGateway(ballots, engine)

	upcoming := testutil.CreateTestElection(t, db, models.StatusUpcoming)
	candidateID := testutil.AddTestCandidate(t, db, upcoming, "Alice")

	_, err := gateway.Submit(context.Background(), "voter-1", candidateID, upcoming)
	if !errors.Is(err, store.ErrElectionNotActive) {
		t.Errorf("Expected ErrElectionNotActive, got %v", err)
	}

	active := testutil.CreateTestElection(t, db, models.StatusActive)
	_, err = gateway.Submit(context.Background(), "voter-1", "no-such-candidate", active)
	if !errors.Is(err, store.ErrInvalidCandidate) {
		t.Errorf("Expected ErrInvalidCandidate, got %v", err)
	}
}
