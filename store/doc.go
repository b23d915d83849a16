// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides durable storage for elections, candidates, and
ballots.

# Ballot Store

BallotStore owns the vote table and enforces the system's central invariant:
at most one ballot per (voter, election) pair.

	ballot, err := ballots.InsertIfAbsent(ctx, voterID, electionID, candidateID, time.Now())
	switch {
	case errors.Is(err, store.ErrAlreadyVoted):
		// exactly one concurrent submission won; this one lost
	case errors.Is(err, store.ErrInvalidCandidate):
	case errors.Is(err, store.ErrElectionNotActive):
	}

Uniqueness is enforced by the database's unique constraint, not by
application locking, so any number of concurrent submissions for the same
pair produce exactly one success.

CountsFor is a full recount from stored ballots and is the ground truth the
tally projection reconciles against. HasVoted reflects only committed
ballots.

# Election Store

ElectionStore manages election metadata and candidate rosters: creation,
listing with aggregate counts, status transitions along
upcoming → active → completed, and roster additions, which are rejected with
ErrRosterFrozen once an election is active.
*/
package store
