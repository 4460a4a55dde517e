// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, migrations and driver errors.

# Connections

Open returns an *sqlx.DB for either supported driver:

	conn, err := db.Open("postgres", cfg.DatabaseURL) // github.com/lib/pq
	conn, err := db.Open("sqlite", "file:app.db")      // modernc.org/sqlite

Queries elsewhere are written with ? placeholders and passed through
conn.Rebind, so the same SQL runs on both.

# Migrations

Migrate applies the embedded goose migrations in migrations/:

	if err := db.Migrate(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times.

# Tables

  - room: room settings, lifecycle status, active member count
  - room_member: membership history (never deleted)
  - question: questions with settings snapshot and vote counter
  - question_option: ordered custom options per question
  - vote: one row per (question, voter)
  - invite: email invitations with expiry

# Constraints

The service relies on these for its concurrency guarantees:

  - room_member(room_id, user_id) unique WHERE status = 'active'
  - room_member(room_id) unique WHERE role = 'host' AND status = 'active'
  - question(room_id) unique WHERE status = 'active'
  - vote(question_id, voted_by) unique
  - vote: exactly one of voted_for_user / voted_for_option

IsUniqueViolation recognizes the violation signal from both drivers so
callers can translate it into a domain conflict.
*/
package db
