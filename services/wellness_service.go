package services

import (
	"context"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/analytics"
	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/journal"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/sleep"
)

const (
	minMoodScore = 1
	maxMoodScore = 10
	maxGoalsLen  = 4000
)

// WellnessService stores moods, journal entries, sleep and free-text goals.
type WellnessService struct {
	store store.WellnessRepository
	loc   *time.Location
	now   func() time.Time
}

func NewWellnessService(s store.WellnessRepository, loc *time.Location) *WellnessService {
	if loc == nil {
		loc = time.UTC
	}
	return &WellnessService{store: s, loc: loc, now: time.Now}
}

// AddMood records a mood. Date may be an RFC 3339 timestamp, a bare
// YYYY-MM-DD day, or empty for now; only its calendar day counts for streaks.
func (s *WellnessService) AddMood(ctx context.Context, userID uuid.UUID, req *mood.CreateMoodRequest) (*mood.Mood, error) {
	if math.IsNaN(req.Mood) || req.Mood < minMoodScore || req.Mood > maxMoodScore {
		return nil, apperr.InvalidInput("mood must be between %d and %d", minMoodScore, maxMoodScore)
	}

	recordedAt, day, err := s.parseMoodDate(strings.TrimSpace(req.Date))
	if err != nil {
		return nil, err
	}

	m := &mood.Mood{UserID: userID, Score: req.Mood, RecordedAt: recordedAt, Day: day}
	if err := s.store.AddMood(ctx, m); err != nil {
		logger.Error("AddMood: store failure", "user", userID, "err", err)
		return nil, apperr.Store("add mood", err)
	}
	return m, nil
}

func (s *WellnessService) parseMoodDate(raw string) (time.Time, civil.Date, error) {
	if raw == "" {
		now := s.now()
		return now, analytics.Today(now, s.loc), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, analytics.Today(t, s.loc), nil
	}
	if d, err := civil.ParseDate(raw); err == nil {
		return d.In(s.loc), d, nil
	}
	return time.Time{}, civil.Date{}, apperr.InvalidInput("date must be RFC 3339 or YYYY-MM-DD")
}

func (s *WellnessService) ListMoods(ctx context.Context, userID uuid.UUID) ([]*mood.Mood, error) {
	moods, err := s.store.ListMoods(ctx, userID)
	if err != nil {
		logger.Error("ListMoods: store failure", "user", userID, "err", err)
		return nil, apperr.Store("list moods", err)
	}
	return moods, nil
}

func (s *WellnessService) AddJournalEntry(ctx context.Context, userID uuid.UUID, req *journal.CreateEntryRequest) (*journal.Entry, error) {
	text := strings.TrimSpace(req.Entry)
	if text == "" {
		return nil, apperr.InvalidInput("entry is required")
	}

	e := &journal.Entry{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Entry:     text,
		Timestamp: s.now().UTC(),
		Mood:      req.Mood,
		Tags:      nonNil(req.Tags),
		Gratitude: nonNil(req.Gratitude),
	}
	if req.Timestamp != nil {
		e.Timestamp = req.Timestamp.UTC()
	}

	if err := s.store.AddJournalEntry(ctx, e); err != nil {
		logger.Error("AddJournalEntry: store failure", "user", userID, "err", err)
		return nil, apperr.Store("add journal entry", err)
	}
	return e, nil
}

func (s *WellnessService) ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]*journal.Entry, error) {
	entries, err := s.store.ListJournalEntries(ctx, userID)
	if err != nil {
		logger.Error("ListJournalEntries: store failure", "user", userID, "err", err)
		return nil, apperr.Store("list journal entries", err)
	}
	return entries, nil
}

func (s *WellnessService) AddSleep(ctx context.Context, userID uuid.UUID, req *sleep.CreateRecordRequest) (*sleep.Record, error) {
	if !req.Date.IsValid() {
		return nil, apperr.InvalidInput("date must be a valid YYYY-MM-DD day")
	}
	if req.Hours == nil || math.IsNaN(*req.Hours) || *req.Hours < 0 || *req.Hours > 24 {
		return nil, apperr.InvalidInput("hours must be between 0 and 24")
	}

	r := &sleep.Record{UserID: userID, Day: req.Date, Hours: *req.Hours}
	if err := s.store.AddSleep(ctx, r); err != nil {
		logger.Error("AddSleep: store failure", "user", userID, "err", err)
		return nil, apperr.Store("add sleep", err)
	}
	return r, nil
}

func (s *WellnessService) ListSleep(ctx context.Context, userID uuid.UUID) ([]*sleep.Record, error) {
	records, err := s.store.ListSleep(ctx, userID)
	if err != nil {
		logger.Error("ListSleep: store failure", "user", userID, "err", err)
		return nil, apperr.Store("list sleep", err)
	}
	return records, nil
}

func (s *WellnessService) GetGoals(ctx context.Context, userID uuid.UUID) (*goal.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID)
	if err != nil {
		logger.Error("GetGoals: store failure", "user", userID, "err", err)
		return nil, apperr.Store("get goals", err)
	}
	return g, nil
}

func (s *WellnessService) PutGoals(ctx context.Context, userID uuid.UUID, g *goal.Goal) (*goal.Goal, error) {
	if len(g.Goals) > maxGoalsLen {
		return nil, apperr.InvalidInput("goals must be at most %d bytes", maxGoalsLen)
	}
	if err := s.store.PutGoal(ctx, userID, *g); err != nil {
		logger.Error("PutGoals: store failure", "user", userID, "err", err)
		return nil, apperr.Store("put goals", err)
	}
	return g, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
