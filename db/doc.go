// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connecting

Open accepts a database type and URL:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "file:ballot.db")

SQLite URLs get foreign_keys and busy_timeout pragmas appended unless the
URL already sets pragmas. SQLite handles are capped at one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: title, time window, lifecycle status
  - position: contestable roles per election
  - candidate: candidates per position
  - voter: issued voter codes, UNIQUE (election_id, code)
  - vote: one row per voter per position, UNIQUE (position_id, voter_id)

# Relationships

	election 1──* position 1──* candidate
	election 1──* voter
	election 1──* vote
	voter    1──* vote

All foreign keys use ON DELETE CASCADE.
*/
package db
