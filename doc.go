// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Closed Ballot API server.

Closed Ballot runs closed-ballot elections: an administrator defines an
election with positions and candidates, issues single-use voter codes, and
voters cast one ballot each while the election is ongoing. Results are
tallied on demand.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=ballot.db ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --admin-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SWEEP_SCHEDULE (--sweep): cron expression for the status sweep
  - VOTER_CODE_LENGTH, VOTER_CODE_BATCH_SIZE, VOTER_CODE_MAX_ATTEMPTS

A .env file in the working directory is loaded if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - lifecycle: election status derivation, sweep, and end-now
  - voters: voter code issuance
  - ledger: ballot validation and the vote-once guarantee
  - results: result tabulation
  - store: SQL persistence
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus collectors, scraped at /metrics

See package documentation for each component.
*/
package main
