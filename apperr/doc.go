// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines the error taxonomy shared by the room, question,
// voting and invite services.
//
// Every failure a caller is expected to handle is an *Error carrying a Kind
// (used by the HTTP layer to pick a status code), a stable machine-readable
// Code, and a human-readable Message.
//
// Sentinels compare by Code, so a message variant built with WithMessage
// still matches its sentinel under errors.Is:
//
//	if errors.Is(err, apperr.ErrDuplicateVote) {
//		// already voted
//	}
//
// Storage and other unexpected failures are returned wrapped with fmt.Errorf
// and are not *Error values; the HTTP layer answers those with a generic 500.
package apperr
