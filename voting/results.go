// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"math"
	"sort"

	"github.com/danielhkuo/shadow-board/models"
)

// Results aggregates a question's votes. Members only.
func (s *Service) Results(ctx context.Context, questionID, requesterID string, includeDetails bool) (*models.Results, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	m, err := s.rooms.CheckAccess(ctx, q.RoomID, requesterID, "")
	if err != nil {
		return nil, err
	}
	if err := s.questions.ApplyExpiry(ctx, q); err != nil {
		return nil, err
	}

	votes, err := s.store.ListVotes(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	var names map[string]string
	if q.QuestionType == models.TypeMemberVoting {
		names, err = s.store.DisplayNames(ctx, q.RoomID)
		if err != nil {
			return nil, err
		}
	}

	res := &models.Results{
		Question:   *q,
		Results:    Tally(q, votes, names),
		TotalVotes: len(votes),
		UserRole:   m.Role,
	}
	if includeDetails {
		res.VoteDetails = Details(q, votes, names)
	}
	return res, nil
}

// Tally groups votes by target and sorts by count, highest first. Ties keep
// aggregation order: defined option order for custom options, first vote
// received for members. Custom options always list every option; member
// questions list only members who received a vote. Percentages are rounded
// independently and need not sum to 100.
func Tally(q *models.Question, votes []models.Vote, names map[string]string) []models.ResultEntry {
	entries := []models.ResultEntry{}
	index := map[string]int{}

	if q.QuestionType == models.TypeCustomOptions {
		for _, opt := range q.CustomOptions {
			index[opt.OptionID] = len(entries)
			entries = append(entries, models.ResultEntry{
				Target: models.Target{Type: "option", OptionID: opt.OptionID, OptionText: opt.OptionText},
			})
		}
	}

	for i := range votes {
		key, target := targetOf(q, &votes[i], names)
		if key == "" {
			continue
		}
		idx, ok := index[key]
		if !ok {
			if q.QuestionType == models.TypeCustomOptions {
				// Option no longer defined; not reported.
				continue
			}
			idx = len(entries)
			index[key] = idx
			entries = append(entries, models.ResultEntry{Target: target})
		}
		entries[idx].VoteCount++
	}

	total := len(votes)
	for i := range entries {
		entries[i].Percentage = percentage(entries[i].VoteCount, total)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].VoteCount > entries[j].VoteCount
	})
	return entries
}

// Details lists every vote with its target. The voter is withheld when the
// question is anonymous or the vote was cast anonymously.
func Details(q *models.Question, votes []models.Vote, names map[string]string) []models.VoteDetail {
	details := make([]models.VoteDetail, 0, len(votes))
	for i := range votes {
		v := &votes[i]
		_, target := targetOf(q, v, names)

		d := models.VoteDetail{
			VoteID:      v.ID,
			VotedFor:    target,
			SubmittedAt: v.SubmittedAt,
			IsAnonymous: v.IsAnonymous,
		}
		if !q.IsAnonymous && !v.IsAnonymous {
			voter := v.VotedBy
			d.VotedBy = &voter
		}
		details = append(details, d)
	}
	return details
}

func targetOf(q *models.Question, v *models.Vote, names map[string]string) (string, models.Target) {
	switch t := v.Target().(type) {
	case models.UserTarget:
		name := names[t.UserID]
		if name == "" {
			name = t.UserID
		}
		return "user:" + t.UserID, models.Target{Type: "user", UserID: t.UserID, DisplayName: name}
	case models.OptionTarget:
		return t.OptionID, models.Target{Type: "option", OptionID: t.OptionID, OptionText: q.OptionText(t.OptionID)}
	}
	return "", models.Target{}
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) * 100 / float64(total)))
}

// UserVote returns the caller's own vote regardless of anonymity.
func (s *Service) UserVote(ctx context.Context, questionID, userID string) (*models.UserVote, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.CheckAccess(ctx, q.RoomID, userID, ""); err != nil {
		return nil, err
	}

	v, err := s.store.UserVote(ctx, q.ID, userID)
	if err != nil {
		return nil, err
	}

	var names map[string]string
	if v.VotedForUser != nil {
		names, err = s.store.DisplayNames(ctx, q.RoomID)
		if err != nil {
			return nil, err
		}
	}
	_, target := targetOf(q, v, names)

	return &models.UserVote{
		VoteID:      v.ID,
		QuestionID:  v.QuestionID,
		VoteTarget:  target,
		SubmittedAt: v.SubmittedAt,
		IsAnonymous: v.IsAnonymous,
	}, nil
}
