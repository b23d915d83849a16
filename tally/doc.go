// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally maintains per-election result projections.

The engine caches vote counts and percentages per candidate, updating the
cache on each accepted ballot and serving ranked results:

	eng := tally.NewEngine(ballots, broadcaster.Publish)
	eng.OnBallotAccepted(ctx, electionID, candidateID)
	results, err := eng.Results(ctx, electionID)

Results are ordered by vote count descending with ties broken by candidate
registration order. Percentages are vote shares of the election total; an
election with no votes reports 0% for every candidate.

The projection is never authoritative. Reconcile replaces it with a recount
from the ballot store, ReconcileLoop does so periodically, and a projection
is rebuilt lazily on first use, so a crash between ballot commit and cache
increment heals itself.
*/
package tally
