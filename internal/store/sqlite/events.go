package sqlite

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/habit"
)

func (s *Store) RecordCompletion(ctx context.Context, e habit.Event) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO habit_events (user_id, habit_name, day)
	VALUES (?, ?, ?)
	ON CONFLICT (user_id, habit_name, day) DO NOTHING`,
		e.UserID, e.HabitName, e.Day.String(),
	)
	if err != nil {
		return false, apperr.Store("record completion", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Store("record completion", err)
	}
	return n == 1, nil
}

func (s *Store) DatesInWindow(ctx context.Context, userID uuid.UUID, habitName string, start, end civil.Date) ([]civil.Date, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT day FROM habit_events
	WHERE user_id = ? AND habit_name = ? AND day BETWEEN ? AND ?
	ORDER BY day`,
		userID, habitName, start.String(), end.String(),
	)
	if err != nil {
		return nil, apperr.Store("dates in window", err)
	}
	return scanDates(rows, "dates in window")
}
