// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import "net/http"

const CodeValidation = "validation_error"

var (
	ErrInvalidInput = New(Validation, "invalid_input", "Must vote for either a user or an option, but not both")
	ErrUnauthorized = New(Unauthorized, "unauthorized", "Authentication required")
	ErrTokenExpired = New(Unauthorized, "token_expired", "Token has expired")

	ErrNotMember = New(Forbidden, "not_member", "Access denied. You are not a member of this room")
	ErrNotHost   = New(Forbidden, "not_host", "Only the room host can perform this action")

	ErrRoomNotFound     = New(NotFound, "room_not_found", "Room not found")
	ErrMemberNotFound   = New(NotFound, "member_not_found", "Member not found in this room")
	ErrQuestionNotFound = New(NotFound, "question_not_found", "Question not found")
	ErrNoActiveQuestion = New(NotFound, "no_active_question", "No active question found")
	ErrVoteNotFound     = New(NotFound, "vote_not_found", "No vote found for this question")
	ErrInviteNotFound   = New(NotFound, "invite_not_found", "Invalid or expired invitation")

	ErrAlreadyMember    = New(Conflict, "already_member", "You are already a member of this room")
	ErrDuplicateVote    = New(Conflict, "duplicate_vote", "You have already voted on this question")
	ErrInviteExists     = New(Conflict, "invite_exists", "An active invitation has already been sent to this email")
	ErrStartConflict    = New(Conflict, "start_conflict", "Another question was started at the same time")
	ErrCapacityExceeded = New(Capacity, "capacity_exceeded", "Room has reached maximum capacity")

	ErrRoomNotAccepting = &Error{Kind: State, Code: "room_not_accepting", Message: "Room is no longer accepting members", Status: http.StatusForbidden}
	ErrRoomClosed       = New(State, "room_closed", "Room is closed")
	ErrInvalidState     = New(State, "invalid_state", "Question is not in a valid state for this action")
	ErrVotingClosed     = New(State, "voting_closed", "Question is not currently accepting votes")

	ErrSelfVoteForbidden = New(Validation, "self_vote_forbidden", "Self-voting is not allowed for this question")
	ErrInvalidOption     = New(Validation, "invalid_option", "Invalid option selected")
	ErrInvalidTarget     = New(Validation, "invalid_target", "Target user is not a member of this room")
	ErrCannotKickHost    = New(Validation, "cannot_kick_host", "Host cannot kick themselves")

	ErrInviteDelivery = New(Unexpected, "invite_delivery_failed", "Failed to send invitation email")
)
