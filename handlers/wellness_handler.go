package handlers

import (
	"context"
	"net/http"
	"time"

	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/journal"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/sleep"
	"pillarsAPI/services"
)

type WellnessHandler struct {
	wellnessService *services.WellnessService
}

func NewWellnessHandler(wellnessService *services.WellnessService) *WellnessHandler {
	return &WellnessHandler{
		wellnessService: wellnessService,
	}
}

// ============= MOODS =============

func (h *WellnessHandler) AddMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req mood.CreateMoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.wellnessService.AddMood(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, m)
}

func (h *WellnessHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	moods, err := h.wellnessService.ListMoods(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, moods)
}

// ============= JOURNAL =============

func (h *WellnessHandler) AddJournalEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req journal.CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := h.wellnessService.AddJournalEntry(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, e)
}

func (h *WellnessHandler) ListJournalEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.wellnessService.ListJournalEntries(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// ============= SLEEP =============

func (h *WellnessHandler) AddSleep(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req sleep.CreateRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.wellnessService.AddSleep(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, rec)
}

func (h *WellnessHandler) ListSleep(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	records, err := h.wellnessService.ListSleep(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

// ============= GOALS =============

func (h *WellnessHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	g, err := h.wellnessService.GetGoals(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}

func (h *WellnessHandler) PutGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req goal.Goal
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.wellnessService.PutGoals(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}
