// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/metrics"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/store"
)

const (
	roomCodeLength   = 6
	roomCodeAttempts = 5
)

// Service is the membership registry: it owns rooms, memberships and the
// access checks every other service goes through.
type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Create creates a room with caller as its host.
func (s *Service) Create(ctx context.Context, caller auth.Identity, req models.CreateRoomRequest) (*models.Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("Room name is required")
	}
	if len(name) > 100 {
		return nil, apperr.Invalid("Room name must be at most 100 characters")
	}
	description := strings.TrimSpace(req.Description)
	if len(description) > 500 {
		return nil, apperr.Invalid("Description must be at most 500 characters")
	}

	settings, err := mergeSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	now := s.now()
	room := &models.Room{
		HostID:       caller.UserID,
		Name:         name,
		Description:  description,
		RoomSettings: settings,
		Status:       models.RoomWaiting,
		MemberCount:  1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	host := &models.Membership{
		ID:          uuid.NewString(),
		UserID:      caller.UserID,
		DisplayName: caller.DisplayName(),
		Email:       caller.Email,
		Role:        models.RoleHost,
		Status:      models.MemberActive,
		JoinedAt:    now,
	}

	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code, err := auth.GenerateCode(roomCodeLength)
		if err != nil {
			return nil, err
		}
		room.RoomID = code
		host.RoomID = code

		err = s.store.WithTx(ctx, func(q *store.Queries) error {
			if err := q.InsertRoom(ctx, room); err != nil {
				return err
			}
			return q.InsertMembership(ctx, host)
		})
		if errors.Is(err, store.ErrRoomCodeTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}

		metrics.RoomsCreated.Inc()
		slog.Info("room created", "room_id", room.RoomID, "host_id", caller.UserID)
		return room, nil
	}

	return nil, errors.New("create room: could not allocate a unique room code")
}

func mergeSettings(in *models.RoomSettingsInput) (models.RoomSettings, error) {
	settings := models.RoomSettings{
		AllowSelfVoting:    false,
		HostCanParticipate: true,
		MaxMembers:         models.DefaultMaxMembers,
		IsAnonymousVoting:  false,
	}
	if in == nil {
		return settings, nil
	}

	if in.AllowSelfVoting != nil {
		settings.AllowSelfVoting = *in.AllowSelfVoting
	}
	if in.HostCanParticipate != nil {
		settings.HostCanParticipate = *in.HostCanParticipate
	}
	if in.IsAnonymousVoting != nil {
		settings.IsAnonymousVoting = *in.IsAnonymousVoting
	}
	if in.MaxMembers != nil {
		if *in.MaxMembers < models.MinMembers || *in.MaxMembers > models.MaxMembers {
			return settings, apperr.Invalid("max_members must be between %d and %d", models.MinMembers, models.MaxMembers)
		}
		settings.MaxMembers = *in.MaxMembers
	}
	return settings, nil
}

// AddMember gives user an active membership in the room. Capacity is taken
// with a conditional increment and the membership row is guarded by the
// active-membership unique index, both inside one transaction.
func (s *Service) AddMember(ctx context.Context, roomID string, user auth.Identity, role string) (*models.Membership, error) {
	switch role {
	case "", models.RoleMember:
	case models.RoleHost:
		return nil, apperr.Invalid("The host is assigned when the room is created")
	default:
		return nil, apperr.Invalid("Unknown role %q", role)
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.AcceptsMembers() {
		return nil, apperr.ErrRoomNotAccepting
	}

	// Fast path; the unique index is the authority.
	if _, err := s.store.ActiveMembership(ctx, roomID, user.UserID); err == nil {
		return nil, apperr.ErrAlreadyMember
	} else if !errors.Is(err, apperr.ErrMemberNotFound) {
		return nil, err
	}

	var m *models.Membership
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		m, err = s.Admit(ctx, q, roomID, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("member joined", "room_id", roomID, "user_id", user.UserID, "role", m.Role)
	return m, nil
}

// Admit takes a seat in the room and inserts an active member membership
// using q, so callers can join it to their own transaction. It returns
// apperr.ErrAlreadyMember when the active-membership index rejects the row.
func (s *Service) Admit(ctx context.Context, q *store.Queries, roomID string, user auth.Identity) (*models.Membership, error) {
	now := s.now()
	m := &models.Membership{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		UserID:      user.UserID,
		DisplayName: user.DisplayName(),
		Email:       user.Email,
		Role:        models.RoleMember,
		Status:      models.MemberActive,
		JoinedAt:    now,
	}

	ok, err := q.ReserveSeat(ctx, roomID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish a full room from one that closed since we read it.
		current, err := q.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if !current.AcceptsMembers() {
			return nil, apperr.ErrRoomNotAccepting
		}
		return nil, apperr.ErrCapacityExceeded
	}
	if err := q.InsertMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember marks the caller's membership left. A departing host closes
// the room; no successor is appointed. closed reports whether that happened.
func (s *Service) RemoveMember(ctx context.Context, roomID, userID string) (closed bool, err error) {
	m, err := s.store.ActiveMembership(ctx, roomID, userID)
	if errors.Is(err, apperr.ErrMemberNotFound) {
		return false, apperr.ErrNotMember.WithMessage("You are not a member of this room")
	}
	if err != nil {
		return false, err
	}

	now := s.now()
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.EndMembership(ctx, m.ID, models.MemberLeft, now); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return apperr.ErrMemberNotFound
			}
			return err
		}
		if err := q.ReleaseSeat(ctx, roomID, now); err != nil {
			return err
		}
		if m.IsHost() {
			return q.SetRoomStatus(ctx, roomID, models.RoomClosed, now)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	metrics.MembershipsEnded.WithLabelValues(models.MemberLeft).Inc()
	if m.IsHost() {
		metrics.RoomsClosed.Inc()
	}
	slog.Info("member left", "room_id", roomID, "user_id", userID, "was_host", m.IsHost())
	return m.IsHost(), nil
}

// Kick marks target's membership kicked. Host only.
func (s *Service) Kick(ctx context.Context, roomID, hostID, targetID string) error {
	if _, err := s.CheckAccess(ctx, roomID, hostID, models.RoleHost); err != nil {
		return err
	}
	if targetID == hostID {
		return apperr.ErrCannotKickHost
	}

	target, err := s.store.ActiveMembership(ctx, roomID, targetID)
	if err != nil {
		return err
	}

	now := s.now()
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.EndMembership(ctx, target.ID, models.MemberKicked, now); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return apperr.ErrMemberNotFound
			}
			return err
		}
		return q.ReleaseSeat(ctx, roomID, now)
	})
	if err != nil {
		return err
	}

	metrics.MembershipsEnded.WithLabelValues(models.MemberKicked).Inc()
	slog.Info("member kicked", "room_id", roomID, "user_id", targetID, "by", hostID)
	return nil
}

// CheckAccess returns the caller's active membership, or ErrNotMember.
// When requiredRole is host, non-host members get ErrNotHost.
func (s *Service) CheckAccess(ctx context.Context, roomID, userID, requiredRole string) (*models.Membership, error) {
	m, err := s.store.ActiveMembership(ctx, roomID, userID)
	if errors.Is(err, apperr.ErrMemberNotFound) {
		if requiredRole == models.RoleHost {
			return nil, apperr.ErrNotHost
		}
		return nil, apperr.ErrNotMember
	}
	if err != nil {
		return nil, err
	}

	if requiredRole == models.RoleHost && !m.IsHost() {
		return nil, apperr.ErrNotHost
	}
	return m, nil
}

// Details returns the room and its active members. Members only.
func (s *Service) Details(ctx context.Context, roomID, userID string) (*models.RoomDetails, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	m, err := s.CheckAccess(ctx, roomID, userID, "")
	if err != nil {
		return nil, err
	}

	members, err := s.store.ActiveMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return &models.RoomDetails{Room: *room, Members: members, UserRole: m.Role}, nil
}

// ListForUser returns rooms where userID is an active member.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.UserRoom, error) {
	return s.store.ListUserRooms(ctx, userID)
}

// Stats returns question and vote counters for the room. Members only.
func (s *Service) Stats(ctx context.Context, roomID, userID string) (*models.RoomStats, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if _, err := s.CheckAccess(ctx, roomID, userID, ""); err != nil {
		return nil, err
	}

	stats, err := s.store.RoomStats(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if stats.TotalQuestions > 0 {
		stats.AverageVotesPerQuestion = int(math.Round(float64(stats.TotalVotes) / float64(stats.TotalQuestions)))
	}
	return stats, nil
}
