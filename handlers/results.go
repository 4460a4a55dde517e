// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/voting"
)

type ResultsHandler struct {
	voting *voting.Service
}

func NewResultsHandler(vs *voting.Service) *ResultsHandler {
	return &ResultsHandler{voting: vs}
}

// GetResults handles GET /questions/{questionId}/results
// Query: includeVoteDetails (default false)
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	includeDetails := r.URL.Query().Get("includeVoteDetails") == "true"

	results, err := h.voting.Results(r.Context(), r.PathValue("questionId"), caller.UserID, includeDetails)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Question results retrieved successfully", results)
}

type recountResponse struct {
	QuestionID string `json:"question_id"`
	TotalVotes int    `json:"total_votes"`
}

// Recount handles POST /questions/{questionId}/recount
// Host only. Rewrites the stored counter from the vote rows.
func (h *ResultsHandler) Recount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	questionID := r.PathValue("questionId")
	total, err := h.voting.Recount(r.Context(), questionID, caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Vote count recalculated", recountResponse{
		QuestionID: questionID,
		TotalVotes: total,
	})
}
