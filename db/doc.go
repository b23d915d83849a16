// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg) // cfg.DatabaseType: "postgres" or "sqlite"

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - election: Election metadata, voting window, and lifecycle state
  - candidate: Roster entries per election, positioned in registration order
  - vote: One ballot per voter per election

# Relationships

	election 1──* candidate
	election 1──* vote
	candidate 1──* vote

Votes reference elections and candidates without ON DELETE CASCADE; ballots
are append-only and never removed.

# Constraints

  - vote.(voter_id, election_id) unique: at most one ballot per voter per
    election, enforced by the database itself
  - candidate.(election_id, position) unique: stable registration order
  - election.status restricted to upcoming/active/completed
*/
package db
