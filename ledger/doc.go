// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger records ballots.

A voter moves NOT_VOTED -> VOTED exactly once. Submit performs that move as a
conditional UPDATE inside the same transaction that inserts the votes; the
affected-row count decides whether the ballot proceeds, so two concurrent
submissions for one code can never both succeed. The earlier status read in
Submit only short-circuits the common case.

Ballots are accepted only while the election's effective status is ONGOING,
computed from the clock rather than the last persisted sweep.
*/
package ledger
