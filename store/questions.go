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

const questionColumns = `id, room_id, question_text, created_by, question_type, status,
	allow_multiple_votes, allow_self_voting, is_anonymous, time_limit_minutes,
	start_time, end_time, total_votes, created_at, updated_at`

// InsertQuestion stores a question and its custom options in order.
func (q *Queries) InsertQuestion(ctx context.Context, qn *models.Question) error {
	_, err := q.exec(ctx, `
		INSERT INTO question (id, room_id, question_text, created_by, question_type, status,
		                      allow_multiple_votes, allow_self_voting, is_anonymous, time_limit_minutes,
		                      total_votes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, qn.ID, qn.RoomID, qn.QuestionText, qn.CreatedBy, qn.QuestionType, qn.Status,
		qn.AllowMultipleVotes, qn.AllowSelfVoting, qn.IsAnonymous, qn.TimeLimitMinutes,
		qn.CreatedAt, qn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	for i, opt := range qn.CustomOptions {
		_, err := q.exec(ctx, `
			INSERT INTO question_option (question_id, option_id, option_text, position)
			VALUES (?, ?, ?, ?)
		`, qn.ID, opt.OptionID, opt.OptionText, i)
		if err != nil {
			return fmt.Errorf("insert option: %w", err)
		}
	}

	return nil
}

// GetQuestion loads a question with its options, or apperr.ErrQuestionNotFound.
func (q *Queries) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var qn models.Question
	err := q.get(ctx, &qn, `SELECT `+questionColumns+` FROM question WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}

	if err := q.loadOptions(ctx, &qn); err != nil {
		return nil, err
	}
	return &qn, nil
}

// ActiveQuestion returns the room's active question, or
// apperr.ErrNoActiveQuestion.
func (q *Queries) ActiveQuestion(ctx context.Context, roomID string) (*models.Question, error) {
	var qn models.Question
	err := q.get(ctx, &qn, `
		SELECT `+questionColumns+` FROM question WHERE room_id = ? AND status = 'active'
	`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNoActiveQuestion
	}
	if err != nil {
		return nil, fmt.Errorf("get active question: %w", err)
	}

	if err := q.loadOptions(ctx, &qn); err != nil {
		return nil, err
	}
	return &qn, nil
}

// ListQuestions returns a room's questions, newest first. A non-empty status
// filters exactly; otherwise includeCompleted=false drops completed ones.
func (q *Queries) ListQuestions(ctx context.Context, roomID, status string, includeCompleted bool) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM question WHERE room_id = ?`
	args := []any{roomID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	} else if !includeCompleted {
		query += ` AND status <> 'completed'`
	}
	query += ` ORDER BY created_at DESC, id`

	questions := []models.Question{}
	if err := q.selectAll(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	for i := range questions {
		if err := q.loadOptions(ctx, &questions[i]); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (q *Queries) loadOptions(ctx context.Context, qn *models.Question) error {
	qn.CustomOptions = []models.Option{}
	err := q.selectAll(ctx, &qn.CustomOptions, `
		SELECT option_id, option_text FROM question_option WHERE question_id = ? ORDER BY position
	`, qn.ID)
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	return nil
}

// CompleteActiveQuestions force-completes every active question in the room
// other than exceptID.
func (q *Queries) CompleteActiveQuestions(ctx context.Context, roomID, exceptID string, at time.Time) (int64, error) {
	n, err := q.exec(ctx, `
		UPDATE question SET status = 'completed', end_time = ?, updated_at = ?
		WHERE room_id = ? AND status = 'active' AND id <> ?
	`, at, at, roomID, exceptID)
	if err != nil {
		return 0, fmt.Errorf("complete active questions: %w", err)
	}
	return n, nil
}

// ActivateQuestion moves a draft question to active. It returns ErrNoRows if
// the question was not a draft, and apperr.ErrStartConflict if another
// question in the room became active concurrently.
func (q *Queries) ActivateQuestion(ctx context.Context, id string, start time.Time, end *time.Time) error {
	n, err := q.exec(ctx, `
		UPDATE question SET status = 'active', start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ? AND status = 'draft'
	`, start, end, start, id)
	if db.IsUniqueViolation(err) {
		return apperr.ErrStartConflict
	}
	if err != nil {
		return fmt.Errorf("activate question: %w", err)
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

// CompleteQuestion ends an active question at the given time. Returns
// ErrNoRows if it was not active.
func (q *Queries) CompleteQuestion(ctx context.Context, id string, at time.Time) error {
	n, err := q.exec(ctx, `
		UPDATE question SET status = 'completed', end_time = ?, updated_at = ?
		WHERE id = ? AND status = 'active'
	`, at, at, id)
	if err != nil {
		return fmt.Errorf("complete question: %w", err)
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

// ExpireQuestion completes an active question whose deadline has passed,
// keeping the deadline as its end time. Idempotent.
func (q *Queries) ExpireQuestion(ctx context.Context, id string, now time.Time) error {
	_, err := q.exec(ctx, `
		UPDATE question SET status = 'completed', updated_at = ?
		WHERE id = ? AND status = 'active'
	`, now, id)
	if err != nil {
		return fmt.Errorf("expire question: %w", err)
	}
	return nil
}

// IncrementVotes counts one vote cast at the given time. The question must
// still be active and inside its deadline; otherwise it returns
// apperr.ErrVotingClosed and the caller's transaction should roll back.
func (q *Queries) IncrementVotes(ctx context.Context, id string, at time.Time) error {
	n, err := q.exec(ctx, `
		UPDATE question SET total_votes = total_votes + 1
		WHERE id = ? AND status = 'active' AND (end_time IS NULL OR end_time > ?)
	`, id, at)
	if err != nil {
		return fmt.Errorf("increment votes: %w", err)
	}
	if n == 0 {
		return apperr.ErrVotingClosed
	}
	return nil
}

// Recount sets total_votes from the vote records and returns the count.
func (q *Queries) Recount(ctx context.Context, id string) (int, error) {
	if _, err := q.exec(ctx, `
		UPDATE question SET total_votes = (SELECT COUNT(*) FROM vote WHERE question_id = ?)
		WHERE id = ?
	`, id, id); err != nil {
		return 0, fmt.Errorf("recount votes: %w", err)
	}

	var total int
	if err := q.get(ctx, &total, `SELECT total_votes FROM question WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("read recount: %w", err)
	}
	return total, nil
}
