package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
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
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO moods (id, user_id, score, recorded_at, day)
	VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Score, formatTime(m.RecordedAt), m.Day.String(),
	)
	return apperr.Store("add mood", err)
}

func (s *Store) ListMoods(ctx context.Context, userID uuid.UUID) ([]*mood.Mood, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, score, recorded_at, day FROM moods
	WHERE user_id = ?
	ORDER BY recorded_at`, userID)
	if err != nil {
		return nil, apperr.Store("list moods", err)
	}
	defer rows.Close()

	out := []*mood.Mood{}
	for rows.Next() {
		m := &mood.Mood{UserID: userID}
		var recordedAt, day string
		if err := rows.Scan(&m.ID, &m.Score, &recordedAt, &day); err != nil {
			return nil, apperr.Store("list moods", err)
		}
		if m.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, apperr.Store("list moods", err)
		}
		if m.Day, err = civil.ParseDate(day); err != nil {
			return nil, apperr.Store("list moods", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list moods", err)
	}
	return out, nil
}

func (s *Store) MoodDaysInWindow(ctx context.Context, userID uuid.UUID, start, end civil.Date) ([]civil.Date, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT day FROM moods
	WHERE user_id = ? AND day BETWEEN ? AND ?
	ORDER BY day`,
		userID, start.String(), end.String(),
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
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return apperr.Store("add journal entry", err)
	}
	gratitude, err := json.Marshal(e.Gratitude)
	if err != nil {
		return apperr.Store("add journal entry", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO journal_entries (id, user_id, title, entry, ts, mood, tags, gratitude)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Entry, formatTime(e.Timestamp), e.Mood, string(tags), string(gratitude),
	)
	return apperr.Store("add journal entry", err)
}

func (s *Store) ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]*journal.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, title, entry, ts, mood, tags, gratitude FROM journal_entries
	WHERE user_id = ?
	ORDER BY ts DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list journal entries", err)
	}
	defer rows.Close()

	out := []*journal.Entry{}
	for rows.Next() {
		e := &journal.Entry{UserID: userID}
		var (
			ts, tags, gratitude string
			moodLabel           sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Entry, &ts, &moodLabel, &tags, &gratitude); err != nil {
			return nil, apperr.Store("list journal entries", err)
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, apperr.Store("list journal entries", err)
		}
		if moodLabel.Valid {
			e.Mood = &moodLabel.String
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, apperr.Store("list journal entries", err)
		}
		if err := json.Unmarshal([]byte(gratitude), &e.Gratitude); err != nil {
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
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO sleep_records (id, user_id, day, hours)
	VALUES (?, ?, ?, ?)`,
		r.ID, r.UserID, r.Day.String(), r.Hours,
	)
	return apperr.Store("add sleep", err)
}

func (s *Store) ListSleep(ctx context.Context, userID uuid.UUID) ([]*sleep.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, day, hours FROM sleep_records
	WHERE user_id = ?
	ORDER BY day DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list sleep", err)
	}
	defer rows.Close()

	out := []*sleep.Record{}
	for rows.Next() {
		r := &sleep.Record{UserID: userID}
		var day string
		if err := rows.Scan(&r.ID, &day, &r.Hours); err != nil {
			return nil, apperr.Store("list sleep", err)
		}
		if r.Day, err = civil.ParseDate(day); err != nil {
			return nil, apperr.Store("list sleep", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list sleep", err)
	}
	return out, nil
}

func (s *Store) GetGoal(ctx context.Context, userID uuid.UUID) (*goal.Goal, error) {
	g := &goal.Goal{}
	err := s.db.QueryRowContext(ctx, `SELECT goals FROM goals WHERE user_id = ?`, userID).Scan(&g.Goals)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Store("get goal", err)
	}
	return g, nil
}

func (s *Store) PutGoal(ctx context.Context, userID uuid.UUID, g goal.Goal) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO goals (user_id, goals, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET goals = excluded.goals, updated_at = excluded.updated_at`,
		userID, g.Goals, formatTime(time.Now()),
	)
	return apperr.Store("put goal", err)
}
