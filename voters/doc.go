// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voters issues voter codes for an election.

	issuer := voters.NewIssuer(st, voters.Options{}, m, logger)
	issued, err := issuer.Generate(ctx, electionID, 250)

Codes are drawn in batches with in-batch duplicates removed before insert.
The database's UNIQUE(election_id, code) constraint decides cross-batch and
cross-request collisions: a colliding batch is redrawn whole, a bounded
number of times. Batches committed before a failure stay committed, so a
caller seeing an error must reconcile against the returned slice.
*/
package voters
