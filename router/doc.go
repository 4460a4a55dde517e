// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Shadow Board API.

# Route Registration

NewRouter builds the domain services and returns a configured
http.ServeMux with all endpoints:

	mux := router.NewRouter(st, cfg, mailer.LogMailer{Logger: slog.Default()})

NewRouterWithServices takes prebuilt services instead, so tests can swap
clocks or mailers.

# Endpoints

Health and metrics (public):

	GET /health
	GET /metrics
	GET /

Every other route requires Authorization: Bearer <token>.

Rooms:

	POST   /rooms                            - Create room (caller becomes host)
	GET    /rooms/user                       - Rooms the caller belongs to
	GET    /rooms/{roomId}                   - Room and active members
	POST   /rooms/{roomId}/join              - Join as member
	POST   /rooms/{roomId}/leave             - Leave (host leaving closes the room)
	DELETE /rooms/{roomId}/members/{userId}  - Kick member (host)
	GET    /rooms/{roomId}/stats             - Question and vote counters

Questions:

	POST  /rooms/{roomId}/questions          - Create draft (host)
	GET   /rooms/{roomId}/questions          - List (?status=, ?includeCompleted=)
	GET   /rooms/{roomId}/questions/active   - Active question and vote targets
	PATCH /questions/{questionId}/start      - Start (host, ends the previous one)
	PATCH /questions/{questionId}/end        - End (host)

Voting:

	POST /questions/{questionId}/vote        - Submit vote
	GET  /questions/{questionId}/my-vote     - Caller's vote
	GET  /questions/{questionId}/results     - Tally (?includeVoteDetails=true)
	POST /questions/{questionId}/recount     - Rebuild vote counter (host)

Invitations:

	POST /rooms/{roomId}/invite              - Email an invite (host)
	GET  /rooms/{roomId}/invites             - List invites (host, ?status=)
	POST /invites/join                       - Redeem invite token

# Middleware

Authenticated routes are wrapped as WithLogging(Authenticate(handler)).
CORS is applied by the caller around the returned mux.
*/
package router
