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

// ErrRoomCodeTaken is returned by InsertRoom when the room code collides.
var ErrRoomCodeTaken = errors.New("room code already in use")

const roomColumns = `room_id, host_id, name, description, allow_self_voting, host_can_participate,
	max_members, is_anonymous_voting, status, member_count, created_at, updated_at`

func (q *Queries) InsertRoom(ctx context.Context, r *models.Room) error {
	_, err := q.exec(ctx, `
		INSERT INTO room (room_id, host_id, name, description, allow_self_voting, host_can_participate,
		                  max_members, is_anonymous_voting, status, member_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RoomID, r.HostID, r.Name, r.Description, r.AllowSelfVoting, r.HostCanParticipate,
		r.MaxMembers, r.IsAnonymousVoting, r.Status, r.MemberCount, r.CreatedAt, r.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrRoomCodeTaken
	}
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (q *Queries) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var r models.Room
	err := q.get(ctx, &r, `SELECT `+roomColumns+` FROM room WHERE room_id = ?`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &r, nil
}

// ReserveSeat atomically increments member_count if the room is below
// capacity and still accepting members. It reports whether a seat was taken.
func (q *Queries) ReserveSeat(ctx context.Context, roomID string, now time.Time) (bool, error) {
	n, err := q.exec(ctx, `
		UPDATE room SET member_count = member_count + 1, updated_at = ?
		WHERE room_id = ? AND member_count < max_members AND status NOT IN ('closed', 'completed')
	`, now, roomID)
	if err != nil {
		return false, fmt.Errorf("reserve seat: %w", err)
	}
	return n == 1, nil
}

func (q *Queries) ReleaseSeat(ctx context.Context, roomID string, now time.Time) error {
	_, err := q.exec(ctx, `
		UPDATE room SET member_count = member_count - 1, updated_at = ?
		WHERE room_id = ? AND member_count > 0
	`, now, roomID)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

func (q *Queries) SetRoomStatus(ctx context.Context, roomID, status string, now time.Time) error {
	_, err := q.exec(ctx, `UPDATE room SET status = ?, updated_at = ? WHERE room_id = ?`, status, now, roomID)
	if err != nil {
		return fmt.Errorf("set room status: %w", err)
	}
	return nil
}

// MarkRoomActive moves a waiting room to active. No-op otherwise.
func (q *Queries) MarkRoomActive(ctx context.Context, roomID string, now time.Time) error {
	_, err := q.exec(ctx, `
		UPDATE room SET status = 'active', updated_at = ? WHERE room_id = ? AND status = 'waiting'
	`, now, roomID)
	if err != nil {
		return fmt.Errorf("mark room active: %w", err)
	}
	return nil
}

// ListUserRooms returns rooms where userID holds an active membership,
// most recently joined first.
func (q *Queries) ListUserRooms(ctx context.Context, userID string) ([]models.UserRoom, error) {
	rooms := []models.UserRoom{}
	err := q.selectAll(ctx, &rooms, `
		SELECT r.room_id, r.host_id, r.name, r.description, r.allow_self_voting, r.host_can_participate,
		       r.max_members, r.is_anonymous_voting, r.status, r.member_count, r.created_at, r.updated_at,
		       m.role, m.joined_at
		FROM room r
		JOIN room_member m ON m.room_id = r.room_id
		WHERE m.user_id = ? AND m.status = 'active'
		ORDER BY m.joined_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user rooms: %w", err)
	}
	return rooms, nil
}

// RoomStats aggregates question and vote counters for a room.
func (q *Queries) RoomStats(ctx context.Context, roomID string) (*models.RoomStats, error) {
	var stats models.RoomStats
	err := q.get(ctx, &stats, `
		SELECT
			(SELECT member_count FROM room WHERE room_id = ?) AS total_members,
			COUNT(*) AS total_questions,
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active_questions,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_questions,
			COALESCE(SUM(total_votes), 0) AS total_votes
		FROM question
		WHERE room_id = ?
	`, roomID, roomID)
	if err != nil {
		return nil, fmt.Errorf("room stats: %w", err)
	}
	return &stats, nil
}
