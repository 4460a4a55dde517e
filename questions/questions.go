// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/metrics"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/rooms"
	"github.com/danielhkuo/shadow-board/store"
)

const optionIDLength = 8

// Service manages the question lifecycle: draft → active → completed.
//
// Deadlines are lazy: nothing runs on a timer. Any path that loads an active
// question past its end_time completes it in storage before acting on it.
type Service struct {
	store *store.Store
	rooms *rooms.Service
	now   func() time.Time
}

func NewService(st *store.Store, rs *rooms.Service) *Service {
	return &Service{store: st, rooms: rs, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Create adds a draft question to the room. Host only.
func (s *Service) Create(ctx context.Context, roomID, hostID string, req models.CreateQuestionRequest) (*models.Question, error) {
	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		return nil, apperr.Invalid("Question text is required")
	}
	if len([]rune(text)) > models.MaxQuestionText {
		return nil, apperr.Invalid("Question text must be at most %d characters", models.MaxQuestionText)
	}

	qType := req.QuestionType
	if qType == "" {
		qType = models.TypeMemberVoting
	}
	if qType != models.TypeMemberVoting && qType != models.TypeCustomOptions {
		return nil, apperr.Invalid("Unknown question type %q", qType)
	}

	if _, err := s.rooms.CheckAccess(ctx, roomID, hostID, models.RoleHost); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.AcceptsMembers() {
		return nil, apperr.ErrRoomClosed.WithMessage("Cannot create questions in a closed room")
	}

	options := []models.Option{}
	if qType == models.TypeCustomOptions {
		options, err = buildOptions(req.CustomOptions)
		if err != nil {
			return nil, err
		}
	}

	settings := models.QuestionSettings{
		AllowSelfVoting: room.AllowSelfVoting,
		IsAnonymous:     room.IsAnonymousVoting,
	}
	if o := req.Settings.AllowMultipleVotes; o != nil {
		settings.AllowMultipleVotes = *o
	}
	if o := req.Settings.AllowSelfVoting; o != nil {
		settings.AllowSelfVoting = *o
	}
	if o := req.Settings.IsAnonymous; o != nil {
		settings.IsAnonymous = *o
	}
	if o := req.Settings.TimeLimitMinutes; o != nil {
		if *o < 0 {
			return nil, apperr.Invalid("time_limit_minutes cannot be negative")
		}
		settings.TimeLimitMinutes = *o
	}

	now := s.now()
	q := &models.Question{
		ID:               uuid.NewString(),
		RoomID:           roomID,
		QuestionText:     text,
		CreatedBy:        hostID,
		QuestionType:     qType,
		Status:           models.QuestionDraft,
		QuestionSettings: settings,
		CustomOptions:    options,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.store.WithTx(ctx, func(tx *store.Queries) error {
		return tx.InsertQuestion(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	slog.Info("question created", "question_id", q.ID, "room_id", roomID, "type", qType)
	return q, nil
}

func buildOptions(in []models.OptionInput) ([]models.Option, error) {
	if len(in) < 2 {
		return nil, apperr.Invalid("At least 2 custom options are required for custom option questions")
	}

	options := make([]models.Option, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, opt := range in {
		text := strings.TrimSpace(opt.OptionText)
		if text == "" {
			return nil, apperr.Invalid("All custom options must have text")
		}

		var id string
		for id == "" || seen[id] {
			code, err := auth.GenerateCode(optionIDLength)
			if err != nil {
				return nil, err
			}
			id = code
		}
		seen[id] = true

		options = append(options, models.Option{OptionID: id, OptionText: text})
	}
	return options, nil
}

// Start activates a draft question. Every other active question in the room
// is force-completed in the same transaction.
func (s *Service) Start(ctx context.Context, questionID, hostID string) (*models.Question, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.CheckAccess(ctx, q.RoomID, hostID, models.RoleHost); err != nil {
		return nil, err
	}
	if q.Status != models.QuestionDraft {
		return nil, apperr.ErrInvalidState.WithMessage("Only draft questions can be started")
	}

	now := s.now()
	var end *time.Time
	if q.TimeLimitMinutes > 0 {
		t := now.Add(time.Duration(q.TimeLimitMinutes) * time.Minute)
		end = &t
	}

	var swept int64
	err = s.store.WithTx(ctx, func(tx *store.Queries) error {
		room, err := tx.GetRoom(ctx, q.RoomID)
		if err != nil {
			return err
		}
		if !room.AcceptsMembers() {
			return apperr.ErrRoomClosed
		}

		swept, err = tx.CompleteActiveQuestions(ctx, q.RoomID, q.ID, now)
		if err != nil {
			return err
		}
		if err := tx.ActivateQuestion(ctx, q.ID, now, end); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return apperr.ErrInvalidState.WithMessage("Only draft questions can be started")
			}
			return err
		}
		return tx.MarkRoomActive(ctx, q.RoomID, now)
	})
	if err != nil {
		return nil, err
	}

	q.Status = models.QuestionActive
	q.StartTime = &now
	q.EndTime = end
	q.UpdatedAt = now

	metrics.QuestionTransitions.WithLabelValues(models.QuestionActive, "start").Inc()
	if swept > 0 {
		metrics.QuestionTransitions.WithLabelValues(models.QuestionCompleted, "superseded").Add(float64(swept))
	}
	slog.Info("question started", "question_id", q.ID, "room_id", q.RoomID, "completed_siblings", swept)
	return q, nil
}

// End completes an active question. Host only.
func (s *Service) End(ctx context.Context, questionID, hostID string) (*models.Question, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.CheckAccess(ctx, q.RoomID, hostID, models.RoleHost); err != nil {
		return nil, err
	}
	if q.Status != models.QuestionActive {
		return nil, apperr.ErrInvalidState.WithMessage("Only active questions can be ended")
	}

	now := s.now()
	if err := s.store.CompleteQuestion(ctx, q.ID, now); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, apperr.ErrInvalidState.WithMessage("Only active questions can be ended")
		}
		return nil, err
	}

	q.Status = models.QuestionCompleted
	q.EndTime = &now
	q.UpdatedAt = now

	metrics.QuestionTransitions.WithLabelValues(models.QuestionCompleted, "end").Inc()
	slog.Info("question ended", "question_id", q.ID, "room_id", q.RoomID)
	return q, nil
}

// Get loads a question and applies lazy expiry.
func (s *Service) Get(ctx context.Context, questionID string) (*models.Question, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ApplyExpiry is the lazy expiry of Get for callers that loaded q from the
// store themselves, typically to check access first.
func (s *Service) ApplyExpiry(ctx context.Context, q *models.Question) error {
	return s.expire(ctx, q)
}

// expire completes q in storage if its deadline has passed.
func (s *Service) expire(ctx context.Context, q *models.Question) error {
	now := s.now()
	if !q.Expired(now) {
		return nil
	}

	if err := s.store.ExpireQuestion(ctx, q.ID, now); err != nil {
		return err
	}
	q.Status = models.QuestionCompleted
	q.UpdatedAt = now

	metrics.QuestionTransitions.WithLabelValues(models.QuestionCompleted, "expired").Inc()
	slog.Info("question expired", "question_id", q.ID, "room_id", q.RoomID, "end_time", q.EndTime)
	return nil
}

// List returns the room's questions, newest first. Members only.
func (s *Service) List(ctx context.Context, roomID, userID, status string, includeCompleted bool) ([]models.Question, error) {
	if _, err := s.rooms.CheckAccess(ctx, roomID, userID, ""); err != nil {
		return nil, err
	}

	list, err := s.store.ListQuestions(ctx, roomID, status, includeCompleted)
	if err != nil {
		return nil, err
	}

	out := list[:0]
	for i := range list {
		if err := s.expire(ctx, &list[i]); err != nil {
			return nil, err
		}
		// An expired question no longer matches an "active" filter.
		if status != "" && list[i].Status != status {
			continue
		}
		if status == "" && !includeCompleted && list[i].Status == models.QuestionCompleted {
			continue
		}
		out = append(out, list[i])
	}
	return out, nil
}

// Active returns the room's active question with the targets the caller
// may vote for. Members only.
func (s *Service) Active(ctx context.Context, roomID, userID string) (*models.ActiveQuestion, error) {
	if _, err := s.rooms.CheckAccess(ctx, roomID, userID, ""); err != nil {
		return nil, err
	}

	q, err := s.store.ActiveQuestion(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, q); err != nil {
		return nil, err
	}
	if q.Status != models.QuestionActive {
		return nil, apperr.ErrNoActiveQuestion
	}

	targets := []models.Target{}
	if q.QuestionType == models.TypeCustomOptions {
		for _, opt := range q.CustomOptions {
			targets = append(targets, models.Target{Type: "option", OptionID: opt.OptionID, OptionText: opt.OptionText})
		}
	} else {
		members, err := s.store.ActiveMembers(ctx, roomID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.UserID == userID && !q.AllowSelfVoting {
				continue
			}
			targets = append(targets, models.Target{Type: "user", UserID: m.UserID, DisplayName: m.DisplayName})
		}
	}

	voted, err := s.store.HasVoted(ctx, q.ID, userID)
	if err != nil {
		return nil, err
	}

	active := &models.ActiveQuestion{Question: *q, AvailableTargets: targets, HasVoted: voted}
	if q.EndTime != nil {
		active.EndsIn = humanize.RelTime(*q.EndTime, s.now(), "ago", "from now")
	}
	return active, nil
}
