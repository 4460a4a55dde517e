// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/models"
)

const inviteColumns = `id, room_id, invited_by, email, invite_token, status, expires_at,
	accepted_at, accepted_by, created_at`

func (q *Queries) InsertInvite(ctx context.Context, inv *models.Invite) error {
	_, err := q.exec(ctx, `
		INSERT INTO invite (id, room_id, invited_by, email, invite_token, status, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.RoomID, inv.InvitedBy, inv.Email, inv.Token, inv.Status, inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (q *Queries) DeleteInvite(ctx context.Context, id string) error {
	if _, err := q.exec(ctx, `DELETE FROM invite WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	return nil
}

// PendingInviteExists reports whether an unexpired sent invite exists for
// the email in the room.
func (q *Queries) PendingInviteExists(ctx context.Context, roomID, email string, now time.Time) (bool, error) {
	var exists bool
	err := q.get(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM invite
			WHERE room_id = ? AND email = ? AND status = 'sent' AND expires_at > ?
		)
	`, roomID, email, now)
	if err != nil {
		return false, fmt.Errorf("check pending invite: %w", err)
	}
	return exists, nil
}

// PendingInviteByToken returns a sent, unexpired invite, or
// apperr.ErrInviteNotFound.
func (q *Queries) PendingInviteByToken(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	var inv models.Invite
	err := q.get(ctx, &inv, `
		SELECT `+inviteColumns+` FROM invite
		WHERE invite_token = ? AND status = 'sent' AND expires_at > ?
	`, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return &inv, nil
}

// AcceptInvite claims a sent, unexpired invite for userID. Only one caller
// can claim an invite; the others get apperr.ErrInviteNotFound.
func (q *Queries) AcceptInvite(ctx context.Context, id, userID string, at time.Time) error {
	n, err := q.exec(ctx, `
		UPDATE invite SET status = 'accepted', accepted_at = ?, accepted_by = ?
		WHERE id = ? AND status = 'sent' AND expires_at > ?
	`, at, userID, id, at)
	if err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	if n == 0 {
		return apperr.ErrInviteNotFound
	}
	return nil
}

// ExpireInvites marks every overdue sent invite in the room expired.
// Idempotent and safe to run concurrently.
func (q *Queries) ExpireInvites(ctx context.Context, roomID string, now time.Time) (int64, error) {
	n, err := q.exec(ctx, `
		UPDATE invite SET status = 'expired'
		WHERE room_id = ? AND status = 'sent' AND expires_at <= ?
	`, roomID, now)
	if err != nil {
		return 0, fmt.Errorf("expire invites: %w", err)
	}
	return n, nil
}

// ListInvites returns a room's invites, newest first, optionally filtered by
// status.
func (q *Queries) ListInvites(ctx context.Context, roomID, status string) ([]models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invite WHERE room_id = ?`
	args := []any{roomID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	invites := []models.Invite{}
	if err := q.selectAll(ctx, &invites, query, args...); err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}
