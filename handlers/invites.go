// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shadow-board/invites"
	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/models"
)

type InviteHandler struct {
	invites *invites.Service
}

func NewInviteHandler(is *invites.Service) *InviteHandler {
	return &InviteHandler{invites: is}
}

// SendInvite handles POST /rooms/{roomId}/invite
func (h *InviteHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SendInviteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	inv, err := h.invites.Send(r.Context(), r.PathValue("roomId"), caller, req.Email)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusCreated, "Invitation sent successfully", inv)
}

// ListInvites handles GET /rooms/{roomId}/invites
// Query: status (sent|accepted|declined|expired)
func (h *InviteHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	list, err := h.invites.List(r.Context(), r.PathValue("roomId"), caller.UserID, r.URL.Query().Get("status"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Room invitations retrieved successfully", list)
}

// JoinByInvite handles POST /invites/join
func (h *InviteHandler) JoinByInvite(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.JoinInviteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	result, err := h.invites.Join(r.Context(), req.Token, caller)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	message := "Successfully joined room via invitation"
	if result.AlreadyMember {
		message = "You are already a member of this room"
	}
	middleware.Success(w, http.StatusOK, message, result)
}
