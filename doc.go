// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the VoteX API server.

VoteX is an election service: admins create elections and candidate
rosters, voters cast at most one ballot per election, and results are
served ranked with live updates streamed per election.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=votex.db JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 4000 -t postgres -d "postgres://..." -jwt-secret "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): database location (file path for sqlite, connection
    string for postgres)
  - JWT_SECRET (-jwt-secret): HMAC secret for verifying bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 4000)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)
  - RECONCILE_EVERY (-reconcile-every): tally recount interval (default: 1m)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (elections, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: auth, CORS, logging, JSON helpers
  - models: Request/response and domain types
  - store: durable election, candidate, and ballot storage
  - tally: per-election result projections and reconciliation
  - live: per-election event fan-out for the SSE stream
  - vote: ballot submission gateway
  - auth: JWT verification
  - db: driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
