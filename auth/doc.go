// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key and voter code generation.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same election ID and salt always produce the same key. This allows
validation without storing the key in the database.

# Voter Codes

Voter codes are short random secrets handed out to eligible voters:

	code, err := auth.GenerateVoterCode(auth.CodeAlphabet, 7)

Each character is drawn uniformly from the alphabet with crypto/rand.
Uniqueness within an election is enforced by the database, not here; see
package voters for the retry loop. Codes typed by voters pass through
NormalizeCode before lookup.
*/
package auth
