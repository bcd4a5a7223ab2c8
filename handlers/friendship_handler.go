package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/services"
)

type FriendshipHandler struct {
	friendshipService *services.FriendshipService
}

func NewFriendshipHandler(friendshipService *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipService: friendshipService,
	}
}

// POST /friends/search
func (h *FriendshipHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req friendship.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	found, err := h.friendshipService.SearchByCode(ctx, userID, req.Code)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

// POST /friends/request
func (h *FriendshipHandler) Request(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, friendID, ok := h.readFriendRequest(w, r)
	if !ok {
		return
	}

	status, err := h.friendshipService.Request(ctx, userID, friendID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "status": status})
}

// POST /friends/accept
func (h *FriendshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, friendID, ok := h.readFriendRequest(w, r)
	if !ok {
		return
	}

	if err := h.friendshipService.Accept(ctx, userID, friendID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "status": friendship.FriendshipAccepted})
}

// POST /friends/decline
func (h *FriendshipHandler) Decline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, friendID, ok := h.readFriendRequest(w, r)
	if !ok {
		return
	}

	declined, err := h.friendshipService.Decline(ctx, userID, friendID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "declined": declined})
}

// GET /friends
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	friends, err := h.friendshipService.ListFriends(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, friends)
}

// GET /friends/requests
func (h *FriendshipHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	requests, err := h.friendshipService.ListRequests(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

// GET /friends/{friendId}/status
func (h *FriendshipHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	friendID, ok := pathUUID(w, r, "friendId")
	if !ok {
		return
	}

	status, err := h.friendshipService.Status(ctx, userID, friendID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// GET /friends/{friendId}/shared-habits
func (h *FriendshipHandler) SharedHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	friendID, ok := pathUUID(w, r, "friendId")
	if !ok {
		return
	}

	titles, err := h.friendshipService.SharedHabits(ctx, userID, friendID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string][]string{"sharedHabits": titles})
}

// POST /friends/encourage
func (h *FriendshipHandler) Encourage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req friendship.EncourageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.friendshipService.Encourage(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *FriendshipHandler) readFriendRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	var req friendship.FriendRequest
	if !decodeJSON(w, r, &req) {
		return uuid.Nil, uuid.Nil, false
	}
	if req.FriendID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "friendId is required")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, req.FriendID, true
}
