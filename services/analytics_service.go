package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/analytics"
	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/predictor"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/types/calendar"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/prediction"
)

// streakExtension is how far back each extra query reaches once a streak
// covers the whole 30-day window.
const streakExtension = 365

type analyticsStore interface {
	DatesInWindow(ctx context.Context, userID uuid.UUID, habitName string, start, end civil.Date) ([]civil.Date, error)
	MoodDaysInWindow(ctx context.Context, userID uuid.UUID, start, end civil.Date) ([]civil.Date, error)
	GetGoal(ctx context.Context, userID uuid.UUID) (*goal.Goal, error)
}

var _ analyticsStore = (store.Store)(nil)

type dayLoader func(ctx context.Context, start, end civil.Date) ([]civil.Date, error)

type AnalyticsService struct {
	store     analyticsStore
	predictor predictor.Predictor
	loc       *time.Location
	now       func() time.Time
}

func NewAnalyticsService(s analyticsStore, p predictor.Predictor, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{store: s, predictor: p, loc: loc, now: time.Now}
}

// today is captured once per operation so every comparison in that operation
// uses the same calendar day.
func (s *AnalyticsService) today() civil.Date {
	return analytics.Today(s.now(), s.loc)
}

// WithClock replaces the time source.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Today is the current calendar day in the configured timezone.
func (s *AnalyticsService) Today() civil.Date {
	return s.today()
}

// Signals aggregates a habit's completion history up to today. weeklyTarget
// must be between 1 and 7; callers fall back to analytics.DefaultWeeklyTarget.
func (s *AnalyticsService) Signals(ctx context.Context, userID uuid.UUID, habitName string, weeklyTarget int) (*prediction.Signals, error) {
	habitName = strings.TrimSpace(habitName)
	if habitName == "" {
		return nil, apperr.InvalidInput("habitName is required")
	}
	if weeklyTarget < 1 || weeklyTarget > 7 {
		return nil, apperr.InvalidInput("weeklyFrequencyTarget must be between 1 and 7")
	}
	return s.signals(ctx, userID, habitName, weeklyTarget, s.today())
}

func (s *AnalyticsService) signals(ctx context.Context, userID uuid.UUID, habitName string, weeklyTarget int, today civil.Date) (*prediction.Signals, error) {
	load := func(ctx context.Context, start, end civil.Date) ([]civil.Date, error) {
		return s.store.DatesInWindow(ctx, userID, habitName, start, end)
	}

	set, err := s.loadStreakSet(ctx, load, today)
	if err != nil {
		logger.Error("HabitSignals: store failure", "user", userID, "habit", habitName, "err", err)
		return nil, apperr.Store("habit signals", err)
	}

	signals := analytics.Compute(set, today, weeklyTarget)
	return &signals, nil
}

// MoodStreak counts consecutive days ending today with at least one mood entry.
func (s *AnalyticsService) MoodStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	today := s.today()
	load := func(ctx context.Context, start, end civil.Date) ([]civil.Date, error) {
		return s.store.MoodDaysInWindow(ctx, userID, start, end)
	}

	set, err := s.loadStreakSet(ctx, load, today)
	if err != nil {
		logger.Error("MoodStreak: store failure", "user", userID, "err", err)
		return 0, apperr.Store("mood streak", err)
	}
	return analytics.CurrentStreak(set, today), nil
}

// loadStreakSet reads the 30-day window ending on today, then keeps reaching
// further back while the streak still spans everything loaded.
func (s *AnalyticsService) loadStreakSet(ctx context.Context, load dayLoader, today civil.Date) (analytics.DaySet, error) {
	start, end := analytics.Window(today, analytics.LongWindow)
	days, err := load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	set := analytics.NewDaySet(days...)

	for analytics.CurrentStreak(set, today) == today.DaysSince(start)+1 {
		end = start.AddDays(-1)
		start = end.AddDays(-(streakExtension - 1))

		days, err := load(ctx, start, end)
		if err != nil {
			return nil, err
		}
		if len(days) == 0 {
			break
		}
		for _, d := range days {
			set.Add(d)
		}
	}
	return set, nil
}

// Calendar reports per-day completion of a habit for one month.
func (s *AnalyticsService) Calendar(ctx context.Context, userID uuid.UUID, habitName string, year, month int) (*calendar.CalendarResponse, error) {
	habitName = strings.TrimSpace(habitName)
	if habitName == "" {
		return nil, apperr.InvalidInput("habitName is required")
	}
	if month < 1 || month > 12 {
		return nil, apperr.InvalidInput("month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, apperr.InvalidInput("year is out of range")
	}

	first, last := analytics.MonthBounds(year, time.Month(month))
	days, err := s.store.DatesInWindow(ctx, userID, habitName, first, last)
	if err != nil {
		logger.Error("GetCalendar: store failure", "user", userID, "habit", habitName, "err", err)
		return nil, apperr.Store("calendar", err)
	}

	set := analytics.NewDaySet(days...)
	today := s.today()

	out := make([]*calendar.CalendarDay, 0, last.Day)
	for d := first; !d.After(last); d = d.AddDays(1) {
		out = append(out, &calendar.CalendarDay{
			Date:      d,
			Completed: set.Has(d),
			IsToday:   d == today,
		})
	}

	return &calendar.CalendarResponse{
		HabitName: habitName,
		Year:      year,
		Month:     month,
		Days:      out,
	}, nil
}

// Predict forwards client-supplied features to the predictor.
func (s *AnalyticsService) Predict(ctx context.Context, req *prediction.Request) (*prediction.Prediction, error) {
	req.HabitName = strings.TrimSpace(req.HabitName)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.predict(ctx, "client", *req)
}

// PredictFromHistory computes signals from the event log and asks the
// predictor about them. On predictor failure the signals are still returned
// together with the error.
func (s *AnalyticsService) PredictFromHistory(ctx context.Context, userID uuid.UUID, req *prediction.FromHistoryRequest) (*prediction.FromHistoryResponse, error) {
	habitName := strings.TrimSpace(req.HabitName)
	if habitName == "" {
		return nil, apperr.InvalidInput("habitName is required")
	}

	target := analytics.DefaultWeeklyTarget
	if req.WeeklyFrequencyTarget != nil {
		target = *req.WeeklyFrequencyTarget
		if target < 1 || target > 7 {
			return nil, apperr.InvalidInput("weeklyFrequencyTarget must be between 1 and 7")
		}
	}

	signals, err := s.signals(ctx, userID, habitName, target, s.today())
	if err != nil {
		return nil, err
	}

	p, err := s.predict(ctx, "history", prediction.Request{
		HabitName:     habitName,
		CurrentStreak: signals.CurrentStreak,
		Reflection:    req.Reflection,
		Features:      signals.Features(),
	})
	if err != nil {
		return &prediction.FromHistoryResponse{Signals: *signals}, err
	}
	return &prediction.FromHistoryResponse{Prediction: *p, Signals: *signals}, nil
}

func (s *AnalyticsService) predict(ctx context.Context, source string, req prediction.Request) (*prediction.Prediction, error) {
	p, err := s.predictor.Predict(ctx, req)
	if err != nil {
		predictorOutcomes.WithLabelValues(source, outcomeOf(err)).Inc()
		logger.Warn("Predict: predictor failed", "habit", req.HabitName, "err", err)
		return nil, apperr.Predictor(err)
	}

	predictorOutcomes.WithLabelValues(source, "success").Inc()
	return p, nil
}

// AnalyzeMood asks the predictor for a short insight on a mood note, using the
// stored goals when the request carries none.
func (s *AnalyticsService) AnalyzeMood(ctx context.Context, userID uuid.UUID, req *prediction.AnalyzeRequest) (*prediction.Insight, error) {
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, apperr.InvalidInput("note is required")
	}
	if len(note) > maxGoalsLen {
		return nil, apperr.InvalidInput("note must be at most %d bytes", maxGoalsLen)
	}

	goals := strings.TrimSpace(req.Goals)
	if goals == "" {
		g, err := s.store.GetGoal(ctx, userID)
		if err != nil {
			logger.Error("AnalyzeMood: store failure", "user", userID, "err", err)
			return nil, apperr.Store("get goal", err)
		}
		goals = strings.TrimSpace(g.Goals)
	}

	insight, err := s.predictor.AnalyzeMood(ctx, note, goals)
	if err != nil {
		predictorOutcomes.WithLabelValues("analyze", outcomeOf(err)).Inc()
		logger.Warn("AnalyzeMood: predictor failed", "user", userID, "err", err)
		return nil, apperr.Predictor(err)
	}

	predictorOutcomes.WithLabelValues("analyze", "success").Inc()
	return &prediction.Insight{Insight: insight}, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "failure"
}
