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
	"github.com/danielhkuo/shadow-board/db"
	"github.com/danielhkuo/shadow-board/models"
)

const memberColumns = `id, room_id, user_id, display_name, email, role, status, joined_at, left_at`

// InsertMembership creates an active membership. A second active membership
// for the same (room, user) violates the partial unique index and is
// reported as apperr.ErrAlreadyMember.
func (q *Queries) InsertMembership(ctx context.Context, m *models.Membership) error {
	_, err := q.exec(ctx, `
		INSERT INTO room_member (id, room_id, user_id, display_name, email, role, status, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.RoomID, m.UserID, m.DisplayName, m.Email, m.Role, m.Status, m.JoinedAt)
	if db.IsUniqueViolation(err) {
		return apperr.ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// ActiveMembership returns the active membership of userID in roomID, or
// apperr.ErrMemberNotFound.
func (q *Queries) ActiveMembership(ctx context.Context, roomID, userID string) (*models.Membership, error) {
	var m models.Membership
	err := q.get(ctx, &m, `
		SELECT `+memberColumns+` FROM room_member
		WHERE room_id = ? AND user_id = ? AND status = 'active'
	`, roomID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// ActiveMembers lists active members in join order.
func (q *Queries) ActiveMembers(ctx context.Context, roomID string) ([]models.Membership, error) {
	members := []models.Membership{}
	err := q.selectAll(ctx, &members, `
		SELECT `+memberColumns+` FROM room_member
		WHERE room_id = ? AND status = 'active'
		ORDER BY joined_at, id
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// DisplayNames maps user IDs to the latest display name recorded in the
// room, including members who have since left.
func (q *Queries) DisplayNames(ctx context.Context, roomID string) (map[string]string, error) {
	var rows []struct {
		UserID      string `db:"user_id"`
		DisplayName string `db:"display_name"`
	}
	err := q.selectAll(ctx, &rows, `
		SELECT user_id, display_name FROM room_member WHERE room_id = ? ORDER BY joined_at, id
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list display names: %w", err)
	}

	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.UserID] = r.DisplayName
	}
	return names, nil
}

// HasActiveMemberEmail reports whether an active member of the room has email.
func (q *Queries) HasActiveMemberEmail(ctx context.Context, roomID, email string) (bool, error) {
	var exists bool
	err := q.get(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM room_member
			WHERE room_id = ? AND email = ? AND email <> '' AND status = 'active'
		)
	`, roomID, email)
	if err != nil {
		return false, fmt.Errorf("check member email: %w", err)
	}
	return exists, nil
}

// EndMembership moves an active membership to status (left or kicked).
// Returns ErrNoRows if the membership was no longer active.
func (q *Queries) EndMembership(ctx context.Context, id, status string, at time.Time) error {
	n, err := q.exec(ctx, `
		UPDATE room_member SET status = ?, left_at = ? WHERE id = ? AND status = 'active'
	`, status, at, id)
	if err != nil {
		return fmt.Errorf("end membership: %w", err)
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}
