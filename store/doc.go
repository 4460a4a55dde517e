// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists rooms, memberships, questions, votes and invites
// with sqlx.
//
// Every query method lives on Queries, which wraps either the pool or a
// transaction, so the same code runs inside and outside Store.WithTx.
// Unique-constraint violations that carry domain meaning are translated into
// apperr sentinels here (duplicate vote, duplicate membership, concurrent
// question start); callers never see raw driver errors for them.
package store
