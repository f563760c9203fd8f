// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Records persisted by the store:

  - Election: title, time window, lifecycle status
  - Position: contestable role owned by one election
  - Candidate: person standing for one position
  - Voter: single-use code scoped to one election
  - Vote: one (position, candidate) choice by one voter

Derived values:

  - Choice: a position -> candidate selection inside a ballot
  - ElectionResults, PositionResult, CandidateResult: tabulated counts
  - StatusCounts: number of elections per status

# Request Types

  - CreateElectionRequest: title, description, start_time, end_time
  - AddPositionRequest: title, description
  - AddCandidateRequest: name, bio, image
  - GenerateVotersRequest: count
  - SignInRequest: code
  - SubmitBallotRequest: choices

# Response Types

  - CreateElectionResponse: election, admin_key
  - GenerateVotersResponse: requested, issued, voters
  - SignInResponse: voter_id, election, status
  - SubmitBallotResponse: votes_recorded, voted_at, message
  - ErrorResponse: error, code, message

# Constants

Election status values:

	StatusUpcoming  = "UPCOMING"
	StatusOngoing   = "ONGOING"
	StatusCompleted = "COMPLETED"

Voter status values:

	VoterNotVoted = "NOT_VOTED"
	VoterVoted    = "VOTED"

VoterID on Vote is never serialized.
*/
package models
