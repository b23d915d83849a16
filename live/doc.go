// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live fans tally events out to subscribers watching an election.

	bc := live.NewBroadcaster()
	ch, unsubscribe := bc.Subscribe(electionID)
	defer unsubscribe()

Each subscriber sees its election's events in publish order. Delivery is
best-effort only: subscriber channels are buffered, sends never block, and a
subscriber whose buffer is full misses events. Subscribers that need exact
totals should refetch results rather than sum the stream.
*/
package live
