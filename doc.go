// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Shadow Board API server.

Shadow Board runs anonymous polls inside rooms. A host creates a room,
members join directly or by email invitation, and the host runs questions
one at a time. Members vote for another member or for a custom option, at
most once per question, and everyone in the room can see the tally.

# Starting the Server

The server reads a .env file, the environment and CLI flags (flags win):

	JWT_SECRET=... DATABASE_URL="file:board.db?_pragma=foreign_keys(1)&_time_format=sqlite" go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - JWT_SECRET (-jwt-secret): HS256 secret for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - FRONTEND_URL (-frontend-url): base for invitation links
  - INVITE_TTL: invitation lifetime (default: 168h)
  - LOG_LEVEL, LOG_FORMAT: slog level and text|json handler

# Architecture

  - handlers: HTTP request handlers (rooms, questions, voting, results, invites)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, authentication, JSON helpers
  - metrics: Prometheus collectors served at GET /metrics
  - rooms, questions, voting, invites: domain services
  - store: SQL queries over sqlx
  - db: connection setup and goose migrations
  - models: domain and request/response types
  - apperr: domain errors and their HTTP mapping
  - auth: bearer tokens and identifiers
  - mailer: invitation delivery
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
