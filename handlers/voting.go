// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/voting"
)

type VotingHandler struct {
	voting *voting.Service
}

func NewVotingHandler(vs *voting.Service) *VotingHandler {
	return &VotingHandler{voting: vs}
}

// SubmitVote handles POST /questions/{questionId}/vote
// Body carries exactly one of voted_for_user or voted_for_option.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	target, err := models.NewVoteTarget(req.VotedForUser, req.VotedForOption)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	receipt, err := h.voting.Submit(r.Context(), r.PathValue("questionId"), caller.UserID, target)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusCreated, "Vote submitted successfully", receipt)
}

// GetMyVote handles GET /questions/{questionId}/my-vote
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	vote, err := h.voting.UserVote(r.Context(), r.PathValue("questionId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "User vote retrieved successfully", vote)
}
