// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth signs and verifies the bearer tokens carrying caller identity.

# Token Format

HS256 JWTs with a role claim alongside the standard subject:

	{"sub": "<user id>", "role": "voter", "iat": ..., "exp": ...}

# Verification

	claims, err := auth.VerifyToken(tokenString, cfg.JWTSecret)
	if err != nil {
		// reject with 403
	}
	// claims.Subject, claims.Role

Registration and login are not part of this server; tokens are minted by the
identity provider (or by SignToken in tests) with the shared secret.
*/
package auth
