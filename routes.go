package main

import (
	"context"
	"net/http"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pillarsAPI/handlers"
	"pillarsAPI/internal/config"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/predictor"
	"pillarsAPI/internal/store"
	"pillarsAPI/middleware"
	"pillarsAPI/services"
)

// newRouter wires services and handlers onto st and returns the CORS-wrapped
// root handler.
func newRouter(st store.Store, cfg *config.Config, verify middleware.TokenVerifier, p predictor.Predictor) http.Handler {
	userService := services.NewUserService(st)
	friendshipService := services.NewFriendshipService(st)
	habitService := services.NewHabitService(st)
	analyticsService := services.NewAnalyticsService(st, p, cfg.Timezone)
	wellnessService := services.NewWellnessService(st, cfg.Timezone)

	userHandler := handlers.NewUserHandler(userService)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	habitHandler := handlers.NewHabitHandler(habitService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, cfg.PredictorTimeout)
	wellnessHandler := handlers.NewWellnessHandler(wellnessService)
	webhookHandler := handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret)

	r := mux.NewRouter()
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "pillars-api"}`))
	}).Methods("GET")

	if cfg.WebhookEnabled() {
		r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	} else {
		logger.Warn("CLERK_WEBHOOK_SECRET not set, /webhooks/clerk is disabled")
	}

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.AuthMiddleware(verify))
	protected.Use(middleware.IdentityMiddleware(userService))

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/friend-code", userHandler.GetFriendCode).Methods("GET")

	protected.HandleFunc("/friends", friendshipHandler.ListFriends).Methods("GET")
	protected.HandleFunc("/friends/requests", friendshipHandler.ListRequests).Methods("GET")
	protected.HandleFunc("/friends/search", friendshipHandler.Search).Methods("POST")
	protected.HandleFunc("/friends/request", friendshipHandler.Request).Methods("POST")
	protected.HandleFunc("/friends/accept", friendshipHandler.Accept).Methods("POST")
	protected.HandleFunc("/friends/decline", friendshipHandler.Decline).Methods("POST")
	protected.HandleFunc("/friends/encourage", friendshipHandler.Encourage).Methods("POST")
	protected.HandleFunc("/friends/{friendId}/status", friendshipHandler.Status).Methods("GET")
	protected.HandleFunc("/friends/{friendId}/shared-habits", friendshipHandler.SharedHabits).Methods("GET")

	protected.HandleFunc("/pillars", habitHandler.ListPillars).Methods("GET")
	protected.HandleFunc("/pillars", habitHandler.CreatePillar).Methods("POST")
	protected.HandleFunc("/pillars/{pillarId}/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{habitId}/toggle", habitHandler.ToggleHabit).Methods("PATCH")

	protected.HandleFunc("/habit/complete", habitHandler.CompleteHabit).Methods("POST")
	protected.HandleFunc("/habit/signals", analyticsHandler.GetSignals).Methods("GET")
	protected.HandleFunc("/habit/calendar", analyticsHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/predict", analyticsHandler.Predict).Methods("POST")
	protected.HandleFunc("/predict/from-history", analyticsHandler.PredictFromHistory).Methods("POST")
	protected.HandleFunc("/analyze", analyticsHandler.AnalyzeMood).Methods("POST")

	protected.HandleFunc("/moods", wellnessHandler.ListMoods).Methods("GET")
	protected.HandleFunc("/moods", wellnessHandler.AddMood).Methods("POST")
	protected.HandleFunc("/streaks", analyticsHandler.GetMoodStreak).Methods("GET")
	protected.HandleFunc("/journal", wellnessHandler.ListJournalEntries).Methods("GET")
	protected.HandleFunc("/journal", wellnessHandler.AddJournalEntry).Methods("POST")
	protected.HandleFunc("/sleep", wellnessHandler.ListSleep).Methods("GET")
	protected.HandleFunc("/sleep", wellnessHandler.AddSleep).Methods("POST")
	protected.HandleFunc("/goals", wellnessHandler.GetGoals).Methods("GET")
	protected.HandleFunc("/goals", wellnessHandler.PutGoals).Methods("PUT")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	return corsHandler(r)
}
