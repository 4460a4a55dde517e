// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, with validate tags checked by
middleware.DecodeAndValidate:

  - CreateRoomRequest: name, description, settings
  - CreateQuestionRequest: question_text, question_type, custom_options, settings
  - SubmitVoteRequest: voted_for_user or voted_for_option
  - SendInviteRequest: email
  - JoinInviteRequest: token

# Vote Targets

A vote is cast for exactly one target:

	target, err := models.NewVoteTarget(req.VotedForUser, req.VotedForOption)
	// UserTarget{UserID} or OptionTarget{OptionID}, or ErrInvalidInput

# Domain Types

  - Room: room metadata, settings and seat counter
  - Membership: a user's (possibly ended) membership in a room
  - Question: question text, type, settings and lifecycle state
  - Option: custom option of a custom_options question
  - Vote: one member's vote on one question
  - Invite: email invitation with a single-use token

# Response Types

Successful responses are wrapped in Envelope; failures use ErrorResponse.

  - Results, ResultEntry, VoteDetail: tallied question results
  - ActiveQuestion: the active question with available targets
  - RoomDetails, UserRoom, RoomStats: room views
  - VoteReceipt, UserVote: a member's own vote

# Constants

Room status:

	RoomWaiting, RoomActive, RoomPaused, RoomCompleted, RoomClosed

Question status:

	QuestionDraft, QuestionActive, QuestionCompleted, QuestionCancelled

Question type:

	TypeMemberVoting, TypeCustomOptions
*/
package models
