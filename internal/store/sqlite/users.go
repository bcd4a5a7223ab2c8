package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/user"
)

const userColumns = `id, external_id, username, friend_code, created_at, updated_at`

func scanUser(row *sql.Row) (*user.User, error) {
	u := &user.User{}
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.ExternalID, &u.Username, &u.FriendCode, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) EnsureUser(ctx context.Context, externalID, friendCode string) (*user.User, error) {
	now := formatTime(time.Now())
	query := `
	INSERT INTO users (id, external_id, friend_code, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (external_id) DO UPDATE SET external_id = excluded.external_id
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRowContext(ctx, query, uuid.New(), externalID, friendCode, now, now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrDuplicate
		}
		return nil, apperr.Store("ensure user", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Store("get user", err)
	}
	return u, nil
}

func (s *Store) GetUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE friend_code = ?`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Store("get user by friend code", err)
	}
	return u, nil
}

func (s *Store) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*user.User, error) {
	query := `
	UPDATE users SET username = ?, updated_at = ?
	WHERE id = ?
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRowContext(ctx, query, username, formatTime(time.Now()), id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperr.NotFound("user")
		case isUniqueViolation(err):
			return nil, apperr.ErrDuplicate
		}
		return nil, apperr.Store("update username", err)
	}
	return u, nil
}

func (s *Store) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE external_id = ?`, externalID)
	if err != nil {
		return apperr.Store("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
