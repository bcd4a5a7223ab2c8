package postgres

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/habit"
)

func (s *Store) RecordCompletion(ctx context.Context, e habit.Event) (bool, error) {
	tag, err := s.db.Exec(ctx, `
	INSERT INTO habit_events (user_id, habit_name, day)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, habit_name, day) DO NOTHING`,
		e.UserID, e.HabitName, dateArg(e.Day),
	)
	if err != nil {
		return false, apperr.Store("record completion", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DatesInWindow(ctx context.Context, userID uuid.UUID, habitName string, start, end civil.Date) ([]civil.Date, error) {
	rows, err := s.db.Query(ctx, `
	SELECT day FROM habit_events
	WHERE user_id = $1 AND habit_name = $2 AND day BETWEEN $3 AND $4
	ORDER BY day`,
		userID, habitName, dateArg(start), dateArg(end),
	)
	if err != nil {
		return nil, apperr.Store("dates in window", err)
	}
	return scanDates(rows, "dates in window")
}
