// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/questions"
)

type QuestionHandler struct {
	questions *questions.Service
}

func NewQuestionHandler(qs *questions.Service) *QuestionHandler {
	return &QuestionHandler{questions: qs}
}

// CreateQuestion handles POST /rooms/{roomId}/questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.CreateQuestionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	q, err := h.questions.Create(r.Context(), r.PathValue("roomId"), caller.UserID, req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusCreated, "Question created successfully", q)
}

// ListQuestions handles GET /rooms/{roomId}/questions
// Query: status (draft|active|completed|cancelled), includeCompleted (default true)
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", models.QuestionDraft, models.QuestionActive, models.QuestionCompleted, models.QuestionCancelled:
	default:
		middleware.WriteError(w, r, apperr.Invalid("Invalid status filter %q", status))
		return
	}
	includeCompleted := r.URL.Query().Get("includeCompleted") != "false"

	list, err := h.questions.List(r.Context(), r.PathValue("roomId"), caller.UserID, status, includeCompleted)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Room questions retrieved successfully", list)
}

// GetActiveQuestion handles GET /rooms/{roomId}/questions/active
func (h *QuestionHandler) GetActiveQuestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	active, err := h.questions.Active(r.Context(), r.PathValue("roomId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Active question retrieved successfully", active)
}

// StartQuestion handles PATCH /questions/{questionId}/start
func (h *QuestionHandler) StartQuestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	q, err := h.questions.Start(r.Context(), r.PathValue("questionId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Question started successfully", q)
}

// EndQuestion handles PATCH /questions/{questionId}/end
func (h *QuestionHandler) EndQuestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	q, err := h.questions.End(r.Context(), r.PathValue("questionId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Question ended successfully", q)
}
