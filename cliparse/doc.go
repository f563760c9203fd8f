// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - SweepSchedule: Cron expression for the status sweep (default: every minute)
  - VoterCodeLength: Characters per voter code (default: 7)
  - VoterCodeBatchSize: Codes inserted per statement (default: 100)
  - VoterCodeMaxAttempts: Retries per colliding batch (default: 5)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-admin-salt     Admin key salt
	-sweep          Sweep cron schedule
	-code-length    Voter code length
	-code-batch     Voter code batch size
	-code-attempts  Voter code attempts per batch

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	ADMIN_KEY_SALT          → -admin-salt
	SWEEP_SCHEDULE          → -sweep
	VOTER_CODE_LENGTH       → -code-length
	VOTER_CODE_BATCH_SIZE   → -code-batch
	VOTER_CODE_MAX_ATTEMPTS → -code-attempts

A .env file in the working directory is loaded first. It never overrides
variables already present in the environment.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - ADMIN_KEY_SALT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - SWEEP_SCHEDULE does not parse as a cron expression
  - a numeric setting is not a positive integer
*/
package cliparse
