// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Shadow Board API.

# Handler Types

Each handler is a struct holding the domain service it fronts:

  - RoomHandler: rooms and membership (create, join, leave, kick, stats)
  - QuestionHandler: question lifecycle (create, list, start, end, active)
  - VotingHandler: vote submission and the caller's own vote
  - ResultsHandler: tallied results and recount
  - InviteHandler: email invitations (send, list, redeem)

Handlers are created via constructor functions:

	roomHandler := handlers.NewRoomHandler(roomService)

# Request Flow

Every handler expects middleware.Authenticate to have attached the caller:

	caller, ok := identity(w, r)

Bodies are decoded and validated with middleware.DecodeAndValidate, path
values read with r.PathValue. Service errors go straight to
middleware.WriteError, which maps them to status codes:

	POST /questions/{questionId}/vote → 201, or 400 duplicate_vote,
	                                    400 voting_closed, 403 not_member, ...

# Question Lifecycle

Questions progress draft → active → completed. Starting a question
completes whichever question was active in the room. Time-limited
questions complete on first access after their deadline.

# Voting

A vote names exactly one target:

	{"voted_for_user": "user-id"}     (member_voting questions)
	{"voted_for_option": "option-id"} (custom_options questions)

Each member votes at most once per question. The database constraint on
(question_id, voted_by) decides concurrent submissions.
*/
package handlers
