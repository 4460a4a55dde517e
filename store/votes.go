// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/db"
	"github.com/danielhkuo/shadow-board/models"
)

const voteColumns = `id, question_id, room_id, voted_by, voted_for_user, voted_for_option,
	is_anonymous, vote_weight, submitted_at`

// InsertVote records a vote. The UNIQUE (question_id, voted_by) constraint is
// the authority on duplicates; its violation is reported as
// apperr.ErrDuplicateVote.
func (q *Queries) InsertVote(ctx context.Context, v *models.Vote) error {
	_, err := q.exec(ctx, `
		INSERT INTO vote (id, question_id, room_id, voted_by, voted_for_user, voted_for_option,
		                  is_anonymous, vote_weight, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.QuestionID, v.RoomID, v.VotedBy, v.VotedForUser, v.VotedForOption,
		v.IsAnonymous, v.VoteWeight, v.SubmittedAt)
	if db.IsUniqueViolation(err) {
		return apperr.ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// UserVote returns userID's vote on a question, or apperr.ErrVoteNotFound.
func (q *Queries) UserVote(ctx context.Context, questionID, userID string) (*models.Vote, error) {
	var v models.Vote
	err := q.get(ctx, &v, `
		SELECT `+voteColumns+` FROM vote WHERE question_id = ? AND voted_by = ?
	`, questionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}
	return &v, nil
}

func (q *Queries) HasVoted(ctx context.Context, questionID, userID string) (bool, error) {
	var exists bool
	err := q.get(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM vote WHERE question_id = ? AND voted_by = ?)
	`, questionID, userID)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return exists, nil
}

// ListVotes returns a question's votes in submission order.
func (q *Queries) ListVotes(ctx context.Context, questionID string) ([]models.Vote, error) {
	votes := []models.Vote{}
	err := q.selectAll(ctx, &votes, `
		SELECT `+voteColumns+` FROM vote WHERE question_id = ? ORDER BY submitted_at, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}
