// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/votexhq/votex/models"
)

// Source is the authoritative data a projection is rebuilt from. The ballot
// store satisfies it.
type Source interface {
	CountsFor(ctx context.Context, electionID string) (map[string]int, error)
	CandidatesFor(ctx context.Context, electionID string) ([]models.Candidate, error)
}

// Engine maintains a read-optimized tally projection per election. The
// projection is a cache: it is built lazily, updated on each accepted
// ballot, and can be replaced wholesale from the Source at any time, so it
// never needs the strict exclusivity the ballot store has.
type Engine struct {
	src    Source
	notify func(models.TallyEvent)

	mu          sync.Mutex
	projections map[string]*projection
}

type projection struct {
	mu     sync.Mutex
	loaded bool
	roster []models.Candidate // registration order
	counts map[string]int     // keyed by candidate ID, one entry per roster member
	total  int
}

// NewEngine creates an engine backed by src. notify, if non-nil, is invoked
// synchronously for each accepted ballot while the election's projection is
// locked, which is what guarantees per-election event order.
func NewEngine(src Source, notify func(models.TallyEvent)) *Engine {
	return &Engine{
		src:         src,
		notify:      notify,
		projections: make(map[string]*projection),
	}
}

func (e *Engine) proj(electionID string) *projection {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.projections[electionID]
	if !ok {
		p = &projection{}
		e.projections[electionID] = p
	}
	return p
}

func (e *Engine) loadedElections() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.projections))
	for id := range e.projections {
		ids = append(ids, id)
	}
	return ids
}

// OnBallotAccepted applies one committed ballot to the election's projection
// and notifies live subscribers.
func (e *Engine) OnBallotAccepted(ctx context.Context, electionID, candidateID string) error {
	p := e.proj(electionID)
	p.mu.Lock()
	defer p.mu.Unlock()

	// A fresh rebuild recounts from the store, which already includes the
	// ballot being reported, so only an already-loaded projection is
	// incremented. The rebuild also covers a roster that grew after the
	// projection was first built.
	fresh := false
	if !p.loaded || !p.onRoster(candidateID) {
		if err := p.rebuild(ctx, e.src, electionID); err != nil {
			return err
		}
		fresh = true
	}
	if !p.onRoster(candidateID) {
		return fmt.Errorf("candidate %s is not on the roster of election %s", candidateID, electionID)
	}

	if !fresh {
		p.counts[candidateID]++
		p.total++
	}

	if e.notify != nil {
		e.notify(models.TallyEvent{
			ElectionID:  electionID,
			CandidateID: candidateID,
			VoteCount:   p.counts[candidateID],
			TotalVotes:  p.total,
		})
	}

	return nil
}

// Results returns the election's tally sorted by vote count descending.
// Ties are broken by candidate registration order, so repeated calls with
// identical counts return identically ordered sequences.
func (e *Engine) Results(ctx context.Context, electionID string) ([]models.TallyEntry, error) {
	p := e.proj(electionID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		if err := p.rebuild(ctx, e.src, electionID); err != nil {
			return nil, err
		}
	}

	type ranked struct {
		entry    models.TallyEntry
		position int
	}

	entries := make([]ranked, len(p.roster))
	for i, c := range p.roster {
		count := p.counts[c.ID]
		percentage := 0.0
		if p.total > 0 {
			percentage = float64(count) / float64(p.total) * 100.0
		}
		entries[i] = ranked{
			entry: models.TallyEntry{
				CandidateID: c.ID,
				Name:        c.Name,
				Party:       c.Party,
				VoteCount:   count,
				Percentage:  percentage,
			},
			position: c.Position,
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		// 1. Higher count wins
		if a.entry.VoteCount != b.entry.VoteCount {
			return a.entry.VoteCount > b.entry.VoteCount
		}

		// 2. Stable tie-breaking by registration order
		return a.position < b.position
	})

	results := make([]models.TallyEntry, len(entries))
	for i, r := range entries {
		results[i] = r.entry
	}

	return results, nil
}

// Reconcile replaces the election's projection with a full recount from the
// Source. This is the repair path whenever cache and store disagree.
func (e *Engine) Reconcile(ctx context.Context, electionID string) error {
	p := e.proj(electionID)
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.rebuild(ctx, e.src, electionID)
}

// ReconcileLoop rebuilds every loaded projection at the given interval until
// the context is canceled.
func (e *Engine) ReconcileLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, electionID := range e.loadedElections() {
				if err := e.Reconcile(ctx, electionID); err != nil {
					slog.Error("tally reconciliation failed", "election_id", electionID, "error", err)
				}
			}
		}
	}
}

func (p *projection) onRoster(candidateID string) bool {
	_, ok := p.counts[candidateID]
	return ok
}

// rebuild must be called with p.mu held.
func (p *projection) rebuild(ctx context.Context, src Source, electionID string) error {
	roster, err := src.CandidatesFor(ctx, electionID)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	counts, err := src.CountsFor(ctx, electionID)
	if err != nil {
		return fmt.Errorf("failed to recount ballots: %w", err)
	}

	p.roster = roster
	p.counts = make(map[string]int, len(roster))
	p.total = 0
	for _, c := range roster {
		p.counts[c.ID] = counts[c.ID]
		p.total += counts[c.ID]
	}
	p.loaded = true

	return nil
}
