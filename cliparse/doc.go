// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

# Precedence

CLI flags win over environment variables, which win over defaults:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Settings

  - -p / PORT: server port (default 4000)
  - -d / DATABASE_URL: database connection string (required)
  - -t / DATABASE_TYPE: "sqlite" or "postgres" (default sqlite)
  - -jwt-secret / JWT_SECRET: token signing secret (required)
  - -reconcile-every / RECONCILE_EVERY: tally reconciliation interval
    (default 1m)

Secrets should come from the environment in production; the flags exist for
development convenience.
*/
package cliparse
