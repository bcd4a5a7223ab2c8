package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/habit"
)

func (s *Store) CreatePillar(ctx context.Context, p *habit.Pillar) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO pillars (id, user_id, title, description, color, progress, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Title, p.Description, int64(p.Color), p.Progress, formatTime(p.CreatedAt),
	)
	return apperr.Store("create pillar", err)
}

func (s *Store) ListPillars(ctx context.Context, userID uuid.UUID) ([]*habit.Pillar, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, title, description, color, progress, created_at
	FROM pillars WHERE user_id = ?
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list pillars", err)
	}
	defer rows.Close()

	pillars := []*habit.Pillar{}
	byID := make(map[uuid.UUID]*habit.Pillar)
	for rows.Next() {
		p := &habit.Pillar{UserID: userID, Habits: []*habit.Habit{}}
		var (
			color     int64
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &color, &p.Progress, &createdAt); err != nil {
			return nil, apperr.Store("list pillars", err)
		}
		p.Color = uint32(color)
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, apperr.Store("list pillars", err)
		}
		pillars = append(pillars, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list pillars", err)
	}
	rows.Close()

	habitRows, err := s.db.QueryContext(ctx, `
	SELECT id, pillar_id, title, completed, streak, created_at
	FROM habits WHERE user_id = ?
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list habits", err)
	}
	defer habitRows.Close()

	for habitRows.Next() {
		h := &habit.Habit{UserID: userID}
		var createdAt string
		if err := habitRows.Scan(&h.ID, &h.PillarID, &h.Title, &h.Completed, &h.Streak, &createdAt); err != nil {
			return nil, apperr.Store("list habits", err)
		}
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, apperr.Store("list habits", err)
		}
		if p, ok := byID[h.PillarID]; ok {
			p.Habits = append(p.Habits, h)
		}
	}
	if err := habitRows.Err(); err != nil {
		return nil, apperr.Store("list habits", err)
	}
	return pillars, nil
}

func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO habits (id, user_id, pillar_id, title, created_at)
	SELECT ?1, ?2, p.id, ?4, ?5 FROM pillars p WHERE p.id = ?3 AND p.user_id = ?2
	RETURNING completed, streak`,
		h.ID, h.UserID, h.PillarID, h.Title, formatTime(h.CreatedAt),
	).Scan(&h.Completed, &h.Streak)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("pillar")
		}
		return apperr.Store("create habit", err)
	}
	return nil
}

func (s *Store) ToggleHabit(ctx context.Context, id, userID uuid.UUID) (habit.ToggleResult, error) {
	var res habit.ToggleResult
	err := s.db.QueryRowContext(ctx, `
	UPDATE habits SET
		completed = NOT completed,
		streak = CASE WHEN completed THEN MAX(streak - 1, 0) ELSE streak + 1 END
	WHERE id = ? AND user_id = ?
	RETURNING completed, streak`,
		id, userID,
	).Scan(&res.Completed, &res.Streak)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return res, apperr.NotFound("habit")
		}
		return res, apperr.Store("toggle habit", err)
	}
	return res, nil
}

func (s *Store) SharedHabitTitles(ctx context.Context, a, b uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT h1.title
	FROM habits h1
	JOIN habits h2 ON h2.title = h1.title AND h2.user_id = ?2
	WHERE h1.user_id = ?1
	ORDER BY h1.title`, a, b)
	if err != nil {
		return nil, apperr.Store("shared habits", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, apperr.Store("shared habits", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("shared habits", err)
	}
	return titles, nil
}
