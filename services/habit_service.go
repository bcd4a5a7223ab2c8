package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/types/habit"
)

type habitStore interface {
	store.HabitRepository
	store.EventRepository
}

// HabitService owns the pillar/habit registry and the completion event log.
type HabitService struct {
	store habitStore
}

func NewHabitService(s habitStore) *HabitService {
	return &HabitService{store: s}
}

func (s *HabitService) CreatePillar(ctx context.Context, userID uuid.UUID, req *habit.CreatePillarRequest) (*habit.Pillar, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.InvalidInput("title is required")
	}

	p := &habit.Pillar{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Color:       habit.DefaultPillarColor,
		Habits:      []*habit.Habit{},
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			return nil, apperr.InvalidInput("progress must be between 0 and 100")
		}
		p.Progress = *req.Progress
	}

	if err := s.store.CreatePillar(ctx, p); err != nil {
		logger.Error("CreatePillar: store failure", "user", userID, "err", err)
		return nil, apperr.Store("create pillar", err)
	}
	return p, nil
}

func (s *HabitService) ListPillars(ctx context.Context, userID uuid.UUID) ([]*habit.Pillar, error) {
	pillars, err := s.store.ListPillars(ctx, userID)
	if err != nil {
		logger.Error("ListPillars: store failure", "user", userID, "err", err)
		return nil, apperr.Store("list pillars", err)
	}
	return pillars, nil
}

// CreateHabit adds a habit to one of the user's own pillars.
func (s *HabitService) CreateHabit(ctx context.Context, userID, pillarID uuid.UUID, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.InvalidInput("title is required")
	}

	h := &habit.Habit{UserID: userID, PillarID: pillarID, Title: title}
	if err := s.store.CreateHabit(ctx, h); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error("CreateHabit: store failure", "user", userID, "pillar", pillarID, "err", err)
		}
		return nil, apperr.Store("create habit", err)
	}
	return h, nil
}

// ToggleHabit flips the completion flag and adjusts the habit's own counter.
func (s *HabitService) ToggleHabit(ctx context.Context, userID, habitID uuid.UUID) (*habit.ToggleResult, error) {
	res, err := s.store.ToggleHabit(ctx, habitID, userID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error("ToggleHabit: store failure", "user", userID, "habit", habitID, "err", err)
		}
		return nil, apperr.Store("toggle habit", err)
	}
	return &res, nil
}

// CompleteHabit logs a completion for a calendar day. Logging the same habit
// twice on one day is accepted and stores nothing new.
func (s *HabitService) CompleteHabit(ctx context.Context, userID uuid.UUID, req *habit.CompleteRequest) (*habit.CompleteResponse, error) {
	name := strings.TrimSpace(req.HabitName)
	if name == "" {
		return nil, apperr.InvalidInput("habitName is required")
	}
	if !req.Date.IsValid() {
		return nil, apperr.InvalidInput("date must be a valid YYYY-MM-DD day")
	}

	recorded, err := s.store.RecordCompletion(ctx, habit.Event{UserID: userID, HabitName: name, Day: req.Date})
	if err != nil {
		logger.Error("CompleteHabit: store failure", "user", userID, "habit", name, "err", err)
		return nil, apperr.Store("record completion", err)
	}

	result := "duplicate"
	if recorded {
		result = "recorded"
	}
	habitCompletions.WithLabelValues(result).Inc()
	return &habit.CompleteResponse{OK: true, Recorded: recorded}, nil
}
