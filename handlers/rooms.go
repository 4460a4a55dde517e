// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/auth"
	"github.com/danielhkuo/shadow-board/middleware"
	"github.com/danielhkuo/shadow-board/models"
	"github.com/danielhkuo/shadow-board/rooms"
)

type RoomHandler struct {
	rooms *rooms.Service
}

func NewRoomHandler(rs *rooms.Service) *RoomHandler {
	return &RoomHandler{rooms: rs}
}

// CreateRoom handles POST /rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.CreateRoomRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	room, err := h.rooms.Create(r.Context(), caller, req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusCreated, "Room created successfully", room)
}

// ListUserRooms handles GET /rooms/user
func (h *RoomHandler) ListUserRooms(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	list, err := h.rooms.ListForUser(r.Context(), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "User rooms retrieved successfully", list)
}

// JoinRoom handles POST /rooms/{roomId}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	m, err := h.rooms.AddMember(r.Context(), r.PathValue("roomId"), caller, models.RoleMember)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Joined room successfully", m)
}

// GetRoom handles GET /rooms/{roomId}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	details, err := h.rooms.Details(r.Context(), r.PathValue("roomId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Room details retrieved successfully", details)
}

// LeaveRoom handles POST /rooms/{roomId}/leave
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	closed, err := h.rooms.RemoveMember(r.Context(), r.PathValue("roomId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	if closed {
		middleware.Success(w, http.StatusOK, "Room closed successfully", nil)
		return
	}
	middleware.Success(w, http.StatusOK, "Left room successfully", nil)
}

// KickMember handles DELETE /rooms/{roomId}/members/{userId}
func (h *RoomHandler) KickMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	err := h.rooms.Kick(r.Context(), r.PathValue("roomId"), caller.UserID, r.PathValue("userId"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Member removed successfully", nil)
}

// GetStats handles GET /rooms/{roomId}/stats
func (h *RoomHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	stats, err := h.rooms.Stats(r.Context(), r.PathValue("roomId"), caller.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Success(w, http.StatusOK, "Room statistics retrieved successfully", stats)
}

// identity returns the authenticated caller or answers 401.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.WriteError(w, r, apperr.ErrUnauthorized)
	}
	return id, ok
}
