package postgres

import (
	"context"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/habit"
)

func (s *Store) CreatePillar(ctx context.Context, p *habit.Pillar) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.db.QueryRow(ctx, `
	INSERT INTO pillars (id, user_id, title, description, color, progress)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at`,
		p.ID, p.UserID, p.Title, p.Description, int64(p.Color), p.Progress,
	).Scan(&p.CreatedAt)
	if err != nil {
		return apperr.Store("create pillar", err)
	}
	return nil
}

func (s *Store) ListPillars(ctx context.Context, userID uuid.UUID) ([]*habit.Pillar, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, title, description, color, progress, created_at
	FROM pillars WHERE user_id = $1
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list pillars", err)
	}
	defer rows.Close()

	pillars := []*habit.Pillar{}
	byID := make(map[uuid.UUID]*habit.Pillar)
	for rows.Next() {
		p := &habit.Pillar{UserID: userID, Habits: []*habit.Habit{}}
		var color int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &color, &p.Progress, &p.CreatedAt); err != nil {
			return nil, apperr.Store("list pillars", err)
		}
		p.Color = uint32(color)
		pillars = append(pillars, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list pillars", err)
	}

	habitRows, err := s.db.Query(ctx, `
	SELECT id, pillar_id, title, completed, streak, created_at
	FROM habits WHERE user_id = $1
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Store("list habits", err)
	}
	defer habitRows.Close()

	for habitRows.Next() {
		h := &habit.Habit{UserID: userID}
		if err := habitRows.Scan(&h.ID, &h.PillarID, &h.Title, &h.Completed, &h.Streak, &h.CreatedAt); err != nil {
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

// CreateHabit inserts only when the pillar belongs to the same user.
func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	err := s.db.QueryRow(ctx, `
	INSERT INTO habits (id, user_id, pillar_id, title)
	SELECT $1, $2, p.id, $4 FROM pillars p WHERE p.id = $3 AND p.user_id = $2
	RETURNING completed, streak, created_at`,
		h.ID, h.UserID, h.PillarID, h.Title,
	).Scan(&h.Completed, &h.Streak, &h.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return apperr.NotFound("pillar")
		}
		return apperr.Store("create habit", err)
	}
	return nil
}

// ToggleHabit flips completion in one statement. The right-hand side of SET
// sees the old row, so the streak branch keys off the previous completed value.
func (s *Store) ToggleHabit(ctx context.Context, id, userID uuid.UUID) (habit.ToggleResult, error) {
	var res habit.ToggleResult
	err := s.db.QueryRow(ctx, `
	UPDATE habits SET
		completed = NOT completed,
		streak = CASE WHEN completed THEN GREATEST(streak - 1, 0) ELSE streak + 1 END
	WHERE id = $1 AND user_id = $2
	RETURNING completed, streak`,
		id, userID,
	).Scan(&res.Completed, &res.Streak)
	if err != nil {
		if isNoRows(err) {
			return res, apperr.NotFound("habit")
		}
		return res, apperr.Store("toggle habit", err)
	}
	return res, nil
}

func (s *Store) SharedHabitTitles(ctx context.Context, a, b uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx, `
	SELECT DISTINCT h1.title
	FROM habits h1
	JOIN habits h2 ON h2.title = h1.title AND h2.user_id = $2
	WHERE h1.user_id = $1
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
