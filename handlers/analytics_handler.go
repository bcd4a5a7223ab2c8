package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pillarsAPI/internal/analytics"
	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/prediction"
	"pillarsAPI/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	predictTimeout   time.Duration
}

// NewAnalyticsHandler takes the predictor timeout so prediction requests get
// enough room on top of it for the store reads.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService, predictTimeout time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		predictTimeout:   predictTimeout,
	}
}

// GET /habit/signals?habitName=&target=
func (h *AnalyticsHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	target := analytics.DefaultWeeklyTarget
	if raw := r.URL.Query().Get("target"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid target")
			return
		}
		target = n
	}

	signals, err := h.analyticsService.Signals(ctx, userID, r.URL.Query().Get("habitName"), target)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, signals)
}

// GET /habit/calendar?habitName=&year=&month=
func (h *AnalyticsHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	today := h.analyticsService.Today()
	year, month := today.Year, int(today.Month)

	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = n
	}
	if raw := q.Get("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = n
	}

	cal, err := h.analyticsService.Calendar(ctx, userID, q.Get("habitName"), year, month)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}

// GET /streaks
func (h *AnalyticsHandler) GetMoodStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	streak, err := h.analyticsService.MoodStreak(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, mood.StreakResponse{Streak: streak})
}

// POST /predict
func (h *AnalyticsHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.predictTimeout+5*time.Second)
	defer cancel()

	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req prediction.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.analyticsService.Predict(ctx, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// POST /predict/from-history
func (h *AnalyticsHandler) PredictFromHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.predictTimeout+5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req prediction.FromHistoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.analyticsService.PredictFromHistory(ctx, userID, &req)
	if err != nil {
		// The computed signals are still useful to the client.
		if errors.Is(err, apperr.ErrPredictorFailure) && resp != nil {
			respondWithJSON(w, http.StatusBadGateway, map[string]any{
				"error":   apperr.PublicMessage(err),
				"signals": resp.Signals,
			})
			return
		}
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// POST /analyze
func (h *AnalyticsHandler) AnalyzeMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.predictTimeout+5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req prediction.AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	insight, err := h.analyticsService.AnalyzeMood(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, insight)
}
