package postgres

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/journal"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/sleep"
)

func (s *Store) AddMood(ctx context.Context, m *mood.Mood) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := s.db.Exec(ctx, `
	INSERT INTO moods (id, user_id, score, recorded_at, day)
	VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Score, m.RecordedAt, dateArg(m.Day),
	)
	return apperr.Store("add mood", err)
}

func (s *Store) ListMoods(ctx context.Context, userID uuid.UUID) ([]*mood.Mood, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, score, recorded_at, day FROM moods
	WHERE user_id = $1
	ORDER BY recorded_at`, userID)
	if err != nil {
		return nil, apperr.Store("list moods", err)
	}
	defer rows.Close()

	out := []*mood.Mood{}
	for rows.Next() {
		m := &mood.Mood{UserID: userID}
		var day time.Time
		if err := rows.Scan(&m.ID, &m.Score, &m.RecordedAt, &day); err != nil {
			return nil, apperr.Store("list moods", err)
		}
		m.Day = civil.DateOf(day)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list moods", err)
	}
	return out, nil
}

func (s *Store) MoodDaysInWindow(ctx context.Context, userID uuid.UUID, start, end civil.Date) ([]civil.Date, error) {
	rows, err := s.db.Query(ctx, `
	SELECT DISTINCT day FROM moods
	WHERE user_id = $1 AND day BETWEEN $2 AND $3
	ORDER BY day`,
		userID, dateArg(start), dateArg(end),
	)
	if err != nil {
		return nil, apperr.Store("mood days", err)
	}
	return scanDates(rows, "mood days")
}

func (s *Store) AddJournalEntry(ctx context.Context, e *journal.Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Gratitude == nil {
		e.Gratitude = []string{}
	}
	_, err := s.db.Exec(ctx, `
	INSERT INTO journal_entries (id, user_id, title, entry, ts, mood, tags, gratitude)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.Title, e.Entry, e.Timestamp, e.Mood, e.Tags, e.Gratitude,
	)
	return apperr.Store("add journal entry", err)
}

func (s *Store) ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]*journal.Entry, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, title, entry, ts, mood, tags, gratitude FROM journal_entries
	WHERE user_id = $1
	ORDER BY ts DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list journal entries", err)
	}
	defer rows.Close()

	out := []*journal.Entry{}
	for rows.Next() {
		e := &journal.Entry{UserID: userID}
		if err := rows.Scan(&e.ID, &e.Title, &e.Entry, &e.Timestamp, &e.Mood, &e.Tags, &e.Gratitude); err != nil {
			return nil, apperr.Store("list journal entries", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list journal entries", err)
	}
	return out, nil
}

func (s *Store) AddSleep(ctx context.Context, r *sleep.Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.Exec(ctx, `
	INSERT INTO sleep_records (id, user_id, day, hours)
	VALUES ($1, $2, $3, $4)`,
		r.ID, r.UserID, dateArg(r.Day), r.Hours,
	)
	return apperr.Store("add sleep", err)
}

func (s *Store) ListSleep(ctx context.Context, userID uuid.UUID) ([]*sleep.Record, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, day, hours FROM sleep_records
	WHERE user_id = $1
	ORDER BY day DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list sleep", err)
	}
	defer rows.Close()

	out := []*sleep.Record{}
	for rows.Next() {
		r := &sleep.Record{UserID: userID}
		var day time.Time
		if err := rows.Scan(&r.ID, &day, &r.Hours); err != nil {
			return nil, apperr.Store("list sleep", err)
		}
		r.Day = civil.DateOf(day)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list sleep", err)
	}
	return out, nil
}

func (s *Store) GetGoal(ctx context.Context, userID uuid.UUID) (*goal.Goal, error) {
	g := &goal.Goal{}
	err := s.db.QueryRow(ctx, `SELECT goals FROM goals WHERE user_id = $1`, userID).Scan(&g.Goals)
	if err != nil && !isNoRows(err) {
		return nil, apperr.Store("get goal", err)
	}
	return g, nil
}

func (s *Store) PutGoal(ctx context.Context, userID uuid.UUID, g goal.Goal) error {
	_, err := s.db.Exec(ctx, `
	INSERT INTO goals (user_id, goals, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (user_id) DO UPDATE SET goals = EXCLUDED.goals, updated_at = NOW()`,
		userID, g.Goals,
	)
	return apperr.Store("put goal", err)
}
