package handlers

import (
	"context"
	"net/http"
	"time"

	"pillarsAPI/internal/types/habit"
	"pillarsAPI/services"
)

type HabitHandler struct {
	habitService *services.HabitService
}

func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

// GET /pillars
func (h *HabitHandler) ListPillars(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	pillars, err := h.habitService.ListPillars(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pillars)
}

// POST /pillars
func (h *HabitHandler) CreatePillar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req habit.CreatePillarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.habitService.CreatePillar(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

// POST /pillars/{pillarId}/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	pillarID, ok := pathUUID(w, r, "pillarId")
	if !ok {
		return
	}

	var req habit.CreateHabitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.habitService.CreateHabit(ctx, userID, pillarID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// PATCH /habits/{habitId}/toggle
func (h *HabitHandler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathUUID(w, r, "habitId")
	if !ok {
		return
	}

	res, err := h.habitService.ToggleHabit(ctx, userID, habitID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// POST /habit/complete
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req habit.CompleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.habitService.CompleteHabit(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}
