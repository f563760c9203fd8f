// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results tabulates elections.

Results are recomputed from the vote table on every call:

	res, err := results.NewAggregator(st, clock.Real{}, logger).Compute(ctx, electionID)

For each position, total_votes counts vote rows for that position and each
candidate's percentage is votes / total_votes * 100, rounded to two decimals
and 0 when nobody voted for the position. total_votes_cast counts voters who
voted, not vote rows. Candidates are ranked by votes; equal counts keep
candidate creation order.
*/
package results
