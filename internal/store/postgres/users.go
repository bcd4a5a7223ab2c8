package postgres

import (
	"context"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/user"
)

const userColumns = `id, external_id, username, friend_code, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.ExternalID, &u.Username, &u.FriendCode, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) EnsureUser(ctx context.Context, externalID, friendCode string) (*user.User, error) {
	// The no-op update lets RETURNING yield the existing row on conflict.
	query := `
	INSERT INTO users (id, external_id, friend_code)
	VALUES ($1, $2, $3)
	ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, uuid.New(), externalID, friendCode))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrDuplicate
		}
		return nil, apperr.Store("ensure user", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Store("get user", err)
	}
	return u, nil
}

func (s *Store) GetUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE friend_code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Store("get user by friend code", err)
	}
	return u, nil
}

func (s *Store) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*user.User, error) {
	query := `
	UPDATE users SET username = $2, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, id, username))
	if err != nil {
		switch {
		case isNoRows(err):
			return nil, apperr.NotFound("user")
		case isUniqueViolation(err):
			return nil, apperr.ErrDuplicate
		}
		return nil, apperr.Store("update username", err)
	}
	return u, nil
}

func (s *Store) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return apperr.Store("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
