// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/votexhq/votex/cliparse"
)

// Open connects to the configured database and verifies the connection.
// DatabaseType selects the driver: "postgres" (lib/pq) for production,
// "sqlite" (modernc.org/sqlite) for development and tests.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	switch cfg.DatabaseType {
	case "postgres":
		conn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return conn, nil

	case "sqlite":
		conn, err := sql.Open("sqlite", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// SQLite serializes writers; a single pooled connection avoids
		// SQLITE_BUSY while keeping constraint behavior identical.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("unsupported database type %q (want sqlite or postgres)", cfg.DatabaseType)
	}
}
