// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity and random code generation.

# Identity

Users are registered and logged in by a separate authentication service.
This package only verifies the HS256 bearer tokens it issues:

	v := auth.NewVerifier(cfg.JWTSecret)
	id, err := v.Verify(auth.BearerToken(r.Header.Get("Authorization")))

The token subject is the user ID; optional name and email claims are copied
into the Identity and snapshotted onto room memberships.

Issue mints tokens with the same claims and is used by tests.

# Codes

Random base62 codes for short public identifiers:

	roomID, err := auth.GenerateCode(6)   // room code
	optionID, err := auth.GenerateCode(8) // custom option ID

Invite tokens are 16 random bytes, hex encoded:

	token, err := auth.GenerateInviteToken()
*/
package auth
