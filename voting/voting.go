// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/metrics"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/questions"
	"github.com/danielhkuo/shadow-board/rooms"
	"github.com/danielhkuo/shadow-board/store"
)

// Service records votes and aggregates results.
type Service struct {
	store     *store.Store
	rooms     *rooms.Service
	questions *questions.Service
	now       func() time.Time
}

func NewService(st *store.Store, rs *rooms.Service, qs *questions.Service) *Service {
	return &Service{store: st, rooms: rs, questions: qs, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Submit records voterID's single vote on a question. Rejections are counted
// by error code.
func (s *Service) Submit(ctx context.Context, questionID, voterID string, target models.VoteTarget) (*models.VoteReceipt, error) {
	receipt, err := s.submit(ctx, questionID, voterID, target)
	if err != nil {
		code := "internal_error"
		if e, ok := apperr.As(err); ok {
			code = e.Code
		}
		metrics.VotesRejected.WithLabelValues(code).Inc()
	}
	return receipt, err
}

// Checks run in order: target shape, question state and deadline, voter
// membership, prior vote, target validity. The prior-vote check is only a
// fast path; the UNIQUE (question_id, voted_by) constraint decides races and
// its violation surfaces as the same ErrDuplicateVote.
func (s *Service) submit(ctx context.Context, questionID, voterID string, target models.VoteTarget) (*models.VoteReceipt, error) {
	if target == nil {
		return nil, apperr.ErrInvalidInput
	}

	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.CheckAccess(ctx, q.RoomID, voterID, ""); err != nil {
		return nil, err
	}

	if err := s.questions.ApplyExpiry(ctx, q); err != nil {
		return nil, err
	}
	if q.Status != models.QuestionActive {
		return nil, apperr.ErrVotingClosed
	}

	voted, err := s.store.HasVoted(ctx, q.ID, voterID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, apperr.ErrDuplicateVote
	}

	if err := s.validateTarget(ctx, q, voterID, target); err != nil {
		return nil, err
	}

	v := &models.Vote{
		ID:          uuid.NewString(),
		QuestionID:  q.ID,
		RoomID:      q.RoomID,
		VotedBy:     voterID,
		IsAnonymous: q.IsAnonymous,
		VoteWeight:  1,
		SubmittedAt: s.now(),
	}
	v.SetTarget(target)

	err = s.store.WithTx(ctx, func(tx *store.Queries) error {
		if err := tx.InsertVote(ctx, v); err != nil {
			return err
		}
		return tx.IncrementVotes(ctx, q.ID, v.SubmittedAt)
	})
	if errors.Is(err, apperr.ErrDuplicateVote) {
		slog.Info("duplicate vote rejected by constraint", "question_id", q.ID, "user_id", voterID)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	metrics.VotesSubmitted.WithLabelValues(q.QuestionType).Inc()
	slog.Info("vote submitted", "question_id", q.ID, "room_id", q.RoomID, "vote_id", v.ID, "anonymous", v.IsAnonymous)
	return &models.VoteReceipt{
		VoteID:      v.ID,
		QuestionID:  v.QuestionID,
		SubmittedAt: v.SubmittedAt,
		IsAnonymous: v.IsAnonymous,
	}, nil
}

func (s *Service) validateTarget(ctx context.Context, q *models.Question, voterID string, target models.VoteTarget) error {
	switch t := target.(type) {
	case models.UserTarget:
		if q.QuestionType != models.TypeMemberVoting {
			return apperr.ErrInvalidInput.WithMessage("This question requires voting for a custom option")
		}
		if _, err := s.store.ActiveMembership(ctx, q.RoomID, t.UserID); err != nil {
			if errors.Is(err, apperr.ErrMemberNotFound) {
				return apperr.ErrInvalidTarget
			}
			return err
		}
		if t.UserID == voterID && !q.AllowSelfVoting {
			return apperr.ErrSelfVoteForbidden
		}
	case models.OptionTarget:
		if q.QuestionType != models.TypeCustomOptions {
			return apperr.ErrInvalidInput.WithMessage("This question requires voting for a room member")
		}
		if !q.HasOption(t.OptionID) {
			return apperr.ErrInvalidOption
		}
	default:
		return apperr.ErrInvalidInput
	}
	return nil
}

// Recount recomputes a question's total_votes from its vote records. Host
// only.
func (s *Service) Recount(ctx context.Context, questionID, hostID string) (int, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return 0, err
	}
	if _, err := s.rooms.CheckAccess(ctx, q.RoomID, hostID, models.RoleHost); err != nil {
		return 0, err
	}

	total, err := s.store.Recount(ctx, q.ID)
	if err != nil {
		return 0, err
	}
	if total != q.TotalVotes {
		slog.Warn("vote counter drift corrected", "question_id", q.ID, "was", q.TotalVotes, "now", total)
	}
	return total, nil
}
