// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Closed Ballot API.

# Route Registration

NewServices builds the election services; NewRouter creates a configured
http.ServeMux over them:

	svc := router.NewServices(db, cfg, clock.Real{}, registry, logger)
	mux := router.NewRouter(svc, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Election administration (mutations require X-Admin-Key):

	POST   /elections           - Create election
	GET    /elections           - List elections, newest first
	GET    /elections/stats     - Count by status
	GET    /elections/{id}      - Election with positions and candidates
	DELETE /elections/{id}      - Delete election and everything under it
	POST   /elections/{id}/end  - End now

Setup (admin, UPCOMING only):

	POST /elections/{id}/positions
	POST /elections/{id}/positions/{positionID}/candidates

Voter codes (admin):

	POST /elections/{id}/voters - Generate codes
	GET  /elections/{id}/voters - List codes and whether they voted

Voting (public, uses voter code):

	POST /elections/{id}/sign-in - Verify a code
	POST /elections/{id}/ballots - Submit ballot (X-Voter-Code)

Results (public):

	GET /elections/{id}/results - Tallies, computed fresh
*/
package router
