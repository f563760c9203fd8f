// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Closed Ballot API.

# Handler Types

Each handler is a thin adapter over a store or service:

  - ElectionHandler: election administration and setup
  - VoterHandler: voter code generation and listing
  - BallotHandler: voter sign-in and ballot submission
  - ResultsHandler: results tabulation

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(st, lifecycleSvc, clock.Real{}, cfg)

Domain errors are written with middleware.WriteError, which maps the error
kind to an HTTP status.

# Election Lifecycle

Elections move UPCOMING → ONGOING → COMPLETED with their time window; the
lifecycle scheduler persists the change. Handlers that care about the
status read it through lifecycle.Effective so they never act on a stale row.

	POST /elections                         → CreateElection (returns admin_key)
	POST /elections/{id}/positions          → AddPosition (UPCOMING only)
	POST /elections/{id}/positions/{positionID}/candidates → AddCandidate (UPCOMING only)
	POST /elections/{id}/end                → EndElection

Admin operations require the X-Admin-Key header.

# Voting Flow

	POST /elections/{id}/voters  → GenerateVoters (admin)
	POST /elections/{id}/sign-in → SignIn
	POST /elections/{id}/ballots → SubmitBallot

Ballot submission requires the X-Voter-Code header. A code votes once.
*/
package handlers
