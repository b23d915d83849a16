// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/votexhq/votex/models"
)

// fakeSource is an in-memory stand-in for the ballot store.
type fakeSource struct {
	mu     sync.Mutex
	roster map[string][]models.Candidate
	counts map[string]map[string]int
	err    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		roster: make(map[string][]models.Candidate),
		counts: make(map[string]map[string]int),
	}
}

func (f *fakeSource) addCandidate(electionID, candidateID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roster[electionID] = append(f.roster[electionID], models.Candidate{
		ID:         candidateID,
		ElectionID: electionID,
		Name:       name,
		Position:   len(f.roster[electionID]) + 1,
	})
}

func (f *fakeSource) setCount(electionID, candidateID string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[electionID] == nil {
		f.counts[electionID] = make(map[string]int)
	}
	f.counts[electionID][candidateID] = count
}

func (f *fakeSource) CountsFor(ctx context.Context, electionID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[string]int)
	for id, n := range f.counts[electionID] {
		counts[id] = n
	}
	return counts, nil
}

func (f *fakeSource) CandidatesFor(ctx context.Context, electionID string) ([]models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Candidate{}, f.roster[electionID]...), nil
}

func TestResultsRankedByCount(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")
	src.addCandidate("e1", "b", "Bob")
	src.addCandidate("e1", "c", "Carol")
	src.setCount("e1", "a", 2)
	src.setCount("e1", "b", 5)
	src.setCount("e1", "c", 3)

	eng := NewEngine(src, nil)

	results, err := eng.Results(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	want := []string{"b", "c", "a"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(results))
	}
	for i, id := range want {
		if results[i].CandidateID != id {
			t.Errorf("Rank %d: expected %s, got %s", i+1, id, results[i].CandidateID)
		}
	}
}

// TestResultsTieBreak verifies that tied candidates are ordered by
// registration order, making repeated reads deterministic.
func TestResultsTieBreak(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "late", "Registered Second")
	src.addCandidate("e1", "later", "Registered Third")
	src.setCount("e1", "late", 4)
	src.setCount("e1", "later", 4)

	eng := NewEngine(src, nil)

	for i := 0; i < 5; i++ {
		results, err := eng.Results(context.Background(), "e1")
		if err != nil {
			t.Fatalf("Results failed: %v", err)
		}
		if results[0].CandidateID != "late" || results[1].CandidateID != "later" {
			t.Fatalf("Tie must be broken by registration order, got %s before %s",
				results[0].CandidateID, results[1].CandidateID)
		}
	}
}

func TestResultsPercentages(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")
	src.addCandidate("e1", "b", "Bob")
	src.setCount("e1", "a", 3)
	src.setCount("e1", "b", 1)

	eng := NewEngine(src, nil)

	results, err := eng.Results(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	if math.Abs(results[0].Percentage-75.0) > 1e-9 {
		t.Errorf("Expected 75%%, got %f", results[0].Percentage)
	}
	if math.Abs(results[1].Percentage-25.0) > 1e-9 {
		t.Errorf("Expected 25%%, got %f", results[1].Percentage)
	}
}

func TestResultsNoVotes(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")
	src.addCandidate("e1", "b", "Bob")

	eng := NewEngine(src, nil)

	results, err := eng.Results(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("All roster candidates should appear, got %d", len(results))
	}
	for _, entry := range results {
		if entry.VoteCount != 0 || entry.Percentage != 0 {
			t.Errorf("Candidate %s: expected 0 votes and 0%%, got %d and %f",
				entry.CandidateID, entry.VoteCount, entry.Percentage)
		}
	}
	// Zero votes is still a tie, so order is registration order
	if results[0].CandidateID != "a" {
		t.Errorf("Expected registration order on empty tally, got %s first", results[0].CandidateID)
	}
}

func TestOnBallotAcceptedIncrements(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")

	var events []models.TallyEvent
	eng := NewEngine(src, func(ev models.TallyEvent) { events = append(events, ev) })

	// Mirror the real flow: the ballot is committed to the source before the
	// engine hears about it.
	for i := 0; i < 3; i++ {
		src.setCount("e1", "a", i+1)
		if err := eng.OnBallotAccepted(context.Background(), "e1", "a"); err != nil {
			t.Fatalf("OnBallotAccepted failed: %v", err)
		}
	}

	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.VoteCount != i+1 || ev.TotalVotes != i+1 {
			t.Errorf("Event %d: expected count=%d total=%d, got count=%d total=%d",
				i, i+1, i+1, ev.VoteCount, ev.TotalVotes)
		}
	}

	results, err := eng.Results(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if results[0].VoteCount != 3 {
		t.Errorf("Expected 3 votes, got %d", results[0].VoteCount)
	}
}

// TestOnBallotAcceptedFirstLoad verifies the lazy-load path does not double
// count: the rebuild already includes the reported ballot.
func TestOnBallotAcceptedFirstLoad(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")
	src.setCount("e1", "a", 7) // includes the ballot being reported

	var events []models.TallyEvent
	eng := NewEngine(src, func(ev models.TallyEvent) { events = append(events, ev) })

	if err := eng.OnBallotAccepted(context.Background(), "e1", "a"); err != nil {
		t.Fatalf("OnBallotAccepted failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].VoteCount != 7 || events[0].TotalVotes != 7 {
		t.Errorf("Expected count=7 total=7, got count=%d total=%d",
			events[0].VoteCount, events[0].TotalVotes)
	}
}

func TestOnBallotAcceptedUnknownCandidate(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")

	eng := NewEngine(src, nil)

	// Prime the projection
	if _, err := eng.Results(context.Background(), "e1"); err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	if err := eng.OnBallotAccepted(context.Background(), "e1", "ghost"); err == nil {
		t.Error("Expected error for candidate missing from the roster")
	}
}

// TestOnBallotAcceptedRosterGrowth verifies a projection built before a
// roster change picks up the new candidate instead of erroring.
func TestOnBallotAcceptedRosterGrowth(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")

	eng := NewEngine(src, nil)
	if _, err := eng.Results(context.Background(), "e1"); err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	src.addCandidate("e1", "b", "Bob")
	src.setCount("e1", "b", 1)

	if err := eng.OnBallotAccepted(context.Background(), "e1", "b"); err != nil {
		t.Fatalf("OnBallotAccepted after roster growth failed: %v", err)
	}

	results, err := eng.Results(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 candidates after roster growth, got %d", len(results))
	}
}

// TestReconcileRepairsDrift verifies that a projection that disagrees with
// the source converges after Reconcile.
func TestReconcileRepairsDrift(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")

	eng := NewEngine(src, nil)

	// Build the projection, then let the store move ahead of it
	if _, err := eng.Results(context.Background(), "e1"); err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	src.setCount("e1", "a", 42)

	if err := eng.Reconcile(context.Background(), "e1"); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	results, err := eng.Results(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if results[0].VoteCount != 42 {
		t.Errorf("Expected reconciled count 42, got %d", results[0].VoteCount)
	}
}

func TestResultsSourceError(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("connection refused")

	eng := NewEngine(src, nil)

	if _, err := eng.Results(context.Background(), "e1"); err == nil {
		t.Error("Expected error when source is unavailable")
	}
}

// TestConcurrentBallotEvents verifies the per-election event guarantee:
// totals observed by the notify callback are strictly increasing, so events
// are never reordered or double-applied.
func TestConcurrentBallotEvents(t *testing.T) {
	src := newFakeSource()
	src.addCandidate("e1", "a", "Alice")
	src.addCandidate("e1", "b", "Bob")

	var mu sync.Mutex
	var totals []int
	eng := NewEngine(src, func(ev models.TallyEvent) {
		mu.Lock()
		totals = append(totals, ev.TotalVotes)
		mu.Unlock()
	})

	numBallots := 40
	var wg sync.WaitGroup
	for i := 0; i < numBallots; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			candidateID := "a"
			if idx%2 == 0 {
				candidateID = "b"
			}
			if err := eng.OnBallotAccepted(context.Background(), "e1", candidateID); err != nil {
				t.Errorf("OnBallotAccepted failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if len(totals) != numBallots {
		t.Fatalf("Expected %d events, got %d", numBallots, len(totals))
	}
	for i := 1; i < len(totals); i++ {
		if totals[i] != totals[i-1]+1 {
			t.Fatalf("Totals must increase by one per event, got %d after %d", totals[i], totals[i-1])
		}
	}
}

func TestReconcileLoopStopsOnCancel(t *testing.T) {
	src := newFakeSource()
	eng := NewEngine(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.ReconcileLoop(ctx, time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReconcileLoop did not stop after cancel")
	}
}
