// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"

	"github.com/danielhkuo/shadow-board/apperr"
)

// Room status constants
const (
	RoomWaiting   = "waiting"
	RoomActive    = "active"
	RoomPaused    = "paused"
	RoomCompleted = "completed"
	RoomClosed    = "closed"
)

// Membership role and status constants
const (
	RoleHost   = "host"
	RoleMember = "member"

	MemberActive = "active"
	MemberLeft   = "left"
	MemberKicked = "kicked"
)

// Question status constants. QuestionCancelled is reserved: no operation
// transitions a question into it.
const (
	QuestionDraft     = "draft"
	QuestionActive    = "active"
	QuestionCompleted = "completed"
	QuestionCancelled = "cancelled"
)

// Question type constants
const (
	TypeMemberVoting  = "member_voting"
	TypeCustomOptions = "custom_options"
)

// Invite status constants
const (
	InviteSent     = "sent"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
	InviteExpired  = "expired"
)

// Room defaults and limits
const (
	DefaultMaxMembers = 50
	MinMembers        = 2
	MaxMembers        = 100
	MaxQuestionText   = 500
)

// Request types

type RoomSettingsInput struct {
	AllowSelfVoting    *bool `json:"allow_self_voting"`
	HostCanParticipate *bool `json:"host_can_participate"`
	MaxMembers         *int  `json:"max_members" validate:"omitempty,min=2,max=100"`
	IsAnonymousVoting  *bool `json:"is_anonymous_voting"`
}

type CreateRoomRequest struct {
	Name        string             `json:"name" validate:"required,max=100"`
	Description string             `json:"description" validate:"max=500"`
	Settings    *RoomSettingsInput `json:"settings"`
}

type OptionInput struct {
	OptionText string `json:"option_text" validate:"max=200"`
}

type QuestionSettingsInput struct {
	AllowMultipleVotes *bool `json:"allow_multiple_votes"`
	AllowSelfVoting    *bool `json:"allow_self_voting"`
	IsAnonymous        *bool `json:"is_anonymous"`
	TimeLimitMinutes   *int  `json:"time_limit_minutes" validate:"omitempty,min=0,max=1440"`
}

type CreateQuestionRequest struct {
	QuestionText  string                `json:"question_text" validate:"required,max=500"`
	QuestionType  string                `json:"question_type" validate:"omitempty,oneof=member_voting custom_options"`
	CustomOptions []OptionInput         `json:"custom_options" validate:"dive"`
	Settings      QuestionSettingsInput `json:"settings"`
}

// SubmitVoteRequest is the wire form of a vote; NewVoteTarget turns it into a
// VoteTarget.
type SubmitVoteRequest struct {
	VotedForUser   string `json:"voted_for_user"`
	VotedForOption string `json:"voted_for_option"`
}

type SendInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type JoinInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// Vote targets

// VoteTarget is what a vote is cast for: either a UserTarget or an
// OptionTarget, never both.
type VoteTarget interface {
	targetID() string
}

type UserTarget struct {
	UserID string
}

type OptionTarget struct {
	OptionID string
}

func (t UserTarget) targetID() string   { return t.UserID }
func (t OptionTarget) targetID() string { return t.OptionID }

// NewVoteTarget builds a target from the two optional wire fields.
// Exactly one of them must be non-blank.
func NewVoteTarget(user, option string) (VoteTarget, error) {
	user = strings.TrimSpace(user)
	option = strings.TrimSpace(option)

	switch {
	case user != "" && option == "":
		return UserTarget{UserID: user}, nil
	case option != "" && user == "":
		return OptionTarget{OptionID: option}, nil
	default:
		return nil, apperr.ErrInvalidInput
	}
}

// Domain types

type RoomSettings struct {
	AllowSelfVoting    bool `db:"allow_self_voting" json:"allow_self_voting"`
	HostCanParticipate bool `db:"host_can_participate" json:"host_can_participate"`
	MaxMembers         int  `db:"max_members" json:"max_members"`
	IsAnonymousVoting  bool `db:"is_anonymous_voting" json:"is_anonymous_voting"`
}

type Room struct {
	RoomID       string `db:"room_id" json:"room_id"`
	HostID       string `db:"host_id" json:"host_id"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	RoomSettings `json:"settings"`
	Status       string    `db:"status" json:"status"`
	MemberCount  int       `db:"member_count" json:"member_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AcceptsMembers reports whether the room can take new members, questions
// and invites.
func (r *Room) AcceptsMembers() bool {
	return r.Status != RoomClosed && r.Status != RoomCompleted
}

type Membership struct {
	ID          string     `db:"id" json:"membership_id"`
	RoomID      string     `db:"room_id" json:"room_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Email       string     `db:"email" json:"email,omitempty"`
	Role        string     `db:"role" json:"role"`
	Status      string     `db:"status" json:"status"`
	JoinedAt    time.Time  `db:"joined_at" json:"joined_at"`
	LeftAt      *time.Time `db:"left_at" json:"left_at,omitempty"`
}

func (m *Membership) IsHost() bool { return m.Role == RoleHost }

type QuestionSettings struct {
	AllowMultipleVotes bool `db:"allow_multiple_votes" json:"allow_multiple_votes"`
	AllowSelfVoting    bool `db:"allow_self_voting" json:"allow_self_voting"`
	IsAnonymous        bool `db:"is_anonymous" json:"is_anonymous"`
	TimeLimitMinutes   int  `db:"time_limit_minutes" json:"time_limit_minutes"`
}

type Option struct {
	OptionID   string `db:"option_id" json:"option_id"`
	OptionText string `db:"option_text" json:"option_text"`
}

type Question struct {
	ID               string `db:"id" json:"question_id"`
	RoomID           string `db:"room_id" json:"room_id"`
	QuestionText     string `db:"question_text" json:"question_text"`
	CreatedBy        string `db:"created_by" json:"created_by"`
	QuestionType     string `db:"question_type" json:"question_type"`
	Status           string `db:"status" json:"status"`
	QuestionSettings `json:"settings"`
	CustomOptions    []Option   `db:"-" json:"custom_options"`
	StartTime        *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime          *time.Time `db:"end_time" json:"end_time,omitempty"`
	TotalVotes       int        `db:"total_votes" json:"total_votes"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Expired reports whether an active question has passed its deadline.
func (q *Question) Expired(now time.Time) bool {
	return q.Status == QuestionActive && q.EndTime != nil && !now.Before(*q.EndTime)
}

// HasOption reports whether optionID is one of the question's custom options.
func (q *Question) HasOption(optionID string) bool {
	for _, opt := range q.CustomOptions {
		if opt.OptionID == optionID {
			return true
		}
	}
	return false
}

// OptionText returns the text of optionID, or "Unknown Option".
func (q *Question) OptionText(optionID string) string {
	for _, opt := range q.CustomOptions {
		if opt.OptionID == optionID {
			return opt.OptionText
		}
	}
	return "Unknown Option"
}

type Vote struct {
	ID             string    `db:"id" json:"vote_id"`
	QuestionID     string    `db:"question_id" json:"question_id"`
	RoomID         string    `db:"room_id" json:"room_id"`
	VotedBy        string    `db:"voted_by" json:"-"`
	VotedForUser   *string   `db:"voted_for_user" json:"-"`
	VotedForOption *string   `db:"voted_for_option" json:"-"`
	IsAnonymous    bool      `db:"is_anonymous" json:"is_anonymous"`
	VoteWeight     int       `db:"vote_weight" json:"-"` // always 1, ignored by aggregation
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}

// Target returns the vote's target as a VoteTarget.
func (v *Vote) Target() VoteTarget {
	if v.VotedForUser != nil {
		return UserTarget{UserID: *v.VotedForUser}
	}
	if v.VotedForOption != nil {
		return OptionTarget{OptionID: *v.VotedForOption}
	}
	return nil
}

// SetTarget stores t in the vote's column pair.
func (v *Vote) SetTarget(t VoteTarget) {
	v.VotedForUser, v.VotedForOption = nil, nil
	switch t := t.(type) {
	case UserTarget:
		id := t.UserID
		v.VotedForUser = &id
	case OptionTarget:
		id := t.OptionID
		v.VotedForOption = &id
	}
}

type Invite struct {
	ID         string     `db:"id" json:"invite_id"`
	RoomID     string     `db:"room_id" json:"room_id"`
	InvitedBy  string     `db:"invited_by" json:"invited_by"`
	Email      string     `db:"email" json:"email"`
	Token      string     `db:"invite_token" json:"-"`
	Status     string     `db:"status" json:"status"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	AcceptedAt *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	AcceptedBy *string    `db:"accepted_by" json:"accepted_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	InviteLink string     `db:"-" json:"invite_link,omitempty"`
}

// Response types

// Target is the JSON rendering of a vote target in results and vote views.
type Target struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	OptionID    string `json:"option_id,omitempty"`
	OptionText  string `json:"option_text,omitempty"`
}

type ResultEntry struct {
	Target     Target `json:"target"`
	VoteCount  int    `json:"vote_count"`
	Percentage int    `json:"percentage"`
}

type VoteDetail struct {
	VoteID      string    `json:"vote_id"`
	VotedBy     *string   `json:"voted_by"`
	VotedFor    Target    `json:"voted_for"`
	SubmittedAt time.Time `json:"submitted_at"`
	IsAnonymous bool      `json:"is_anonymous"`
}

type Results struct {
	Question    Question      `json:"question"`
	Results     []ResultEntry `json:"results"`
	VoteDetails []VoteDetail  `json:"vote_details,omitempty"`
	TotalVotes  int           `json:"total_votes"`
	UserRole    string        `json:"user_role"`
}

type VoteReceipt struct {
	VoteID      string    `json:"vote_id"`
	QuestionID  string    `json:"question_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	IsAnonymous bool      `json:"is_anonymous"`
}

type UserVote struct {
	VoteID      string    `json:"vote_id"`
	QuestionID  string    `json:"question_id"`
	VoteTarget  Target    `json:"vote_target"`
	SubmittedAt time.Time `json:"submitted_at"`
	IsAnonymous bool      `json:"is_anonymous"`
}

type RoomDetails struct {
	Room     Room         `json:"room"`
	Members  []Membership `json:"members"`
	UserRole string       `json:"user_role"`
}

type UserRoom struct {
	Room
	Role     string    `db:"role" json:"user_role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type RoomStats struct {
	TotalMembers            int `db:"total_members" json:"total_members"`
	TotalQuestions          int `db:"total_questions" json:"total_questions"`
	ActiveQuestions         int `db:"active_questions" json:"active_questions"`
	CompletedQuestions      int `db:"completed_questions" json:"completed_questions"`
	TotalVotes              int `db:"total_votes" json:"total_votes"`
	AverageVotesPerQuestion int `db:"-" json:"average_votes_per_question"`
}

type ActiveQuestion struct {
	Question         Question `json:"question"`
	AvailableTargets []Target `json:"available_targets"`
	HasVoted         bool     `json:"has_voted"`
	EndsIn           string   `json:"ends_in,omitempty"`
}

type InviteJoinResult struct {
	RoomID        string `json:"room_id"`
	RoomName      string `json:"room_name"`
	AlreadyMember bool   `json:"already_member"`
}

// Envelope wraps every successful response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
