// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package invites sends email invitations to rooms and redeems them.
package invites

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/mailer"
	"github.com/danielhkuo/shadow-board/metrics"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/rooms"
	"github.com/danielhkuo/shadow-board/store"
)

var validate = validator.New()

type Service struct {
	store       *store.Store
	rooms       *rooms.Service
	mailer      mailer.Mailer
	frontendURL string
	ttl         time.Duration
	now         func() time.Time
}

func NewService(st *store.Store, rs *rooms.Service, m mailer.Mailer, frontendURL string, ttl time.Duration) *Service {
	return &Service{
		store:       st,
		rooms:       rs,
		mailer:      m,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Send invites email to the room and emails a join link. If the email cannot
// be sent the invite is deleted again.
func (s *Service) Send(ctx context.Context, roomID string, host auth.Identity, email string) (*models.Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, apperr.Invalid("A valid email address is required")
	}

	if _, err := s.rooms.CheckAccess(ctx, roomID, host.UserID, models.RoleHost); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.AcceptsMembers() {
		return nil, apperr.ErrRoomNotAccepting
	}

	member, err := s.store.HasActiveMemberEmail(ctx, roomID, email)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperr.ErrAlreadyMember.WithMessage("User is already a member of this room")
	}

	now := s.now()
	pending, err := s.store.PendingInviteExists(ctx, roomID, email, now)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.ErrInviteExists
	}

	token, err := auth.GenerateInviteToken()
	if err != nil {
		return nil, err
	}
	inv := &models.Invite{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		InvitedBy: host.UserID,
		Email:     email,
		Token:     token,
		Status:    models.InviteSent,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.InsertInvite(ctx, inv); err != nil {
		return nil, err
	}
	inv.InviteLink = s.frontendURL + "/join-room?token=" + url.QueryEscape(token)

	err = s.mailer.SendInvitation(ctx, mailer.Invitation{
		To:        email,
		RoomName:  room.Name,
		HostName:  host.DisplayName(),
		Link:      inv.InviteLink,
		ExpiresAt: inv.ExpiresAt,
	})
	if err != nil {
		slog.Error("failed to send invitation email", "error", err, "room_id", roomID, "invite_id", inv.ID)
		if delErr := s.store.DeleteInvite(ctx, inv.ID); delErr != nil {
			slog.Error("failed to delete undeliverable invite", "error", delErr, "invite_id", inv.ID)
		}
		metrics.Invites.WithLabelValues("delivery_failed").Inc()
		return nil, apperr.ErrInviteDelivery.Wrap(err)
	}

	metrics.Invites.WithLabelValues("sent").Inc()
	slog.Info("invite sent", "room_id", roomID, "invite_id", inv.ID)
	return inv, nil
}

// Join redeems an invite token for user. The invite is claimed in the same
// transaction that takes the seat, so a token admits at most one user.
// Redeeming as an existing member still consumes the token.
func (s *Service) Join(ctx context.Context, token string, user auth.Identity) (*models.InviteJoinResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Invalid("Invitation token is required")
	}

	now := s.now()
	inv, err := s.store.PendingInviteByToken(ctx, token, now)
	if err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, inv.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.AcceptsMembers() {
		return nil, apperr.ErrRoomNotAccepting
	}

	result := &models.InviteJoinResult{RoomID: room.RoomID, RoomName: room.Name}

	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.AcceptInvite(ctx, inv.ID, user.UserID, now); err != nil {
			return err
		}
		_, err := q.ActiveMembership(ctx, room.RoomID, user.UserID)
		switch {
		case err == nil:
			result.AlreadyMember = true
			return nil
		case !errors.Is(err, apperr.ErrMemberNotFound):
			return err
		}
		_, err = s.rooms.Admit(ctx, q, room.RoomID, user)
		return err
	})
	if errors.Is(err, apperr.ErrAlreadyMember) {
		// The user joined through another path while we were admitting them.
		err = s.store.AcceptInvite(ctx, inv.ID, user.UserID, now)
		result.AlreadyMember = true
	}
	if err != nil {
		return nil, err
	}

	metrics.Invites.WithLabelValues("accepted").Inc()
	slog.Info("invite accepted", "room_id", room.RoomID, "invite_id", inv.ID, "user_id", user.UserID, "already_member", result.AlreadyMember)
	return result, nil
}

// List returns the room's invites after marking overdue ones expired. Host
// only.
func (s *Service) List(ctx context.Context, roomID, hostID, status string) ([]models.Invite, error) {
	if status != "" {
		switch status {
		case models.InviteSent, models.InviteAccepted, models.InviteDeclined, models.InviteExpired:
		default:
			return nil, apperr.Invalid("Unknown invite status %q", status)
		}
	}

	if _, err := s.rooms.CheckAccess(ctx, roomID, hostID, models.RoleHost); err != nil {
		return nil, err
	}

	n, err := s.store.ExpireInvites(ctx, roomID, s.now())
	if err != nil {
		return nil, err
	}
	if n > 0 {
		slog.Info("invites expired", "room_id", roomID, "count", n)
	}

	return s.store.ListInvites(ctx, roomID, status)
}
