// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

type ElectionStatus string

// Election status constants
const (
	StatusUpcoming  ElectionStatus = "UPCOMING"
	StatusOngoing   ElectionStatus = "ONGOING"
	StatusCompleted ElectionStatus = "COMPLETED"
)

type VoterStatus string

// Voter status constants
const (
	VoterNotVoted VoterStatus = "NOT_VOTED"
	VoterVoted    VoterStatus = "VOTED"
)

// Domain types

type Election struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Status      ElectionStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

type Position struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Candidate struct {
	ID         string    `json:"id"`
	PositionID string    `json:"position_id"`
	Name       string    `json:"name"`
	Bio        *string   `json:"bio,omitempty"`
	Image      *string   `json:"image,omitempty"` // opaque media reference
	CreatedAt  time.Time `json:"created_at"`
}

type Voter struct {
	ID         string      `json:"id"`
	ElectionID string      `json:"election_id"`
	Code       string      `json:"code"`
	Status     VoterStatus `json:"status"`
	VotedAt    *time.Time  `json:"voted_at,omitempty"`
}

type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	PositionID  string    `json:"position_id"`
	CandidateID string    `json:"candidate_id"`
	VoterID     string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at"`
}

// Choice is one position -> candidate selection within a ballot.
type Choice struct {
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
}

type StatusCounts struct {
	Upcoming  int `json:"upcoming"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
}

// Results types

type CandidateResult struct {
	Candidate  Candidate `json:"candidate"`
	Votes      int       `json:"votes"`
	Percentage float64   `json:"percentage"`
}

type PositionResult struct {
	Position   Position          `json:"position"`
	TotalVotes int               `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
}

type ElectionResults struct {
	Election       Election         `json:"election"`
	TotalVoters    int              `json:"total_voters"`
	TotalVotesCast int              `json:"total_votes_cast"`
	Positions      []PositionResult `json:"positions"`
}

type PositionWithCandidates struct {
	Position   Position    `json:"position"`
	Candidates []Candidate `json:"candidates"`
}

type ElectionDetail struct {
	Election  Election                 `json:"election"`
	Positions []PositionWithCandidates `json:"positions"`
}

// Request types

type CreateElectionRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type AddPositionRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type AddCandidateRequest struct {
	Name  string  `json:"name"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

type GenerateVotersRequest struct {
	Count int `json:"count"`
}

type SignInRequest struct {
	Code string `json:"code"`
}

type SubmitBallotRequest struct {
	Choices []Choice `json:"choices"`
}

// Response types

type CreateElectionResponse struct {
	Election Election `json:"election"`
	AdminKey string   `json:"admin_key"`
}

type GenerateVotersResponse struct {
	Requested int     `json:"requested"`
	Issued    int     `json:"issued"`
	Voters    []Voter `json:"voters"`
}

type SignInResponse struct {
	VoterID    string      `json:"voter_id"`
	ElectionID string      `json:"election_id"`
	Election   Election    `json:"election"`
	Status     VoterStatus `json:"status"`
}

type SubmitBallotResponse struct {
	VotesRecorded int       `json:"votes_recorded"`
	VotedAt       time.Time `json:"voted_at"`
	Message       string    `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
