// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package vote coordinates ballot submission: durable insert through the
// ballot store first, then a best-effort tally update. The store's unique
// constraint is what keeps concurrent duplicate submissions down to one
// accepted ballot; the gateway adds no locking of its own.
package vote
