package postgres

import (
	"context"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/internal/types/user"
)

// RequestFriendship inserts a pending row, or reopens a declined one with the
// new requester. Pending and accepted rows are left alone, in which case the
// upsert returns nothing and the current status is read back.
func (s *Store) RequestFriendship(ctx context.Context, pair friendship.Pair, requester uuid.UUID) (friendship.FriendshipStatus, error) {
	query := `
	INSERT INTO friendships (user_low, user_high, requester_id, status)
	VALUES ($1, $2, $3, 'pending')
	ON CONFLICT (user_low, user_high) DO UPDATE
		SET requester_id = EXCLUDED.requester_id, status = 'pending', updated_at = NOW()
		WHERE friendships.status = 'declined'
	RETURNING status`

	var status friendship.FriendshipStatus
	err := s.db.QueryRow(ctx, query, pair.Low, pair.High, requester).Scan(&status)
	if err == nil {
		return status, nil
	}
	if !isNoRows(err) {
		return "", apperr.Store("request friendship", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT status FROM friendships WHERE user_low = $1 AND user_high = $2`,
		pair.Low, pair.High,
	).Scan(&status)
	if err != nil {
		return "", apperr.Store("request friendship", err)
	}
	return status, nil
}

func (s *Store) AcceptFriendship(ctx context.Context, pair friendship.Pair, actor uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE friendships SET status = 'accepted', updated_at = NOW()
	WHERE user_low = $1 AND user_high = $2 AND status = 'pending' AND requester_id <> $3`,
		pair.Low, pair.High, actor,
	)
	if err != nil {
		return false, apperr.Store("accept friendship", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DeclineFriendship(ctx context.Context, pair friendship.Pair) (bool, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE friendships SET status = 'declined', updated_at = NOW()
	WHERE user_low = $1 AND user_high = $2 AND status = 'pending'`,
		pair.Low, pair.High,
	)
	if err != nil {
		return false, apperr.Store("decline friendship", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetFriendship(ctx context.Context, pair friendship.Pair) (*friendship.Friendship, error) {
	f := &friendship.Friendship{Pair: pair}
	err := s.db.QueryRow(ctx, `
	SELECT requester_id, status, created_at, updated_at
	FROM friendships WHERE user_low = $1 AND user_high = $2`,
		pair.Low, pair.High,
	).Scan(&f.RequesterID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("friendship")
		}
		return nil, apperr.Store("get friendship", err)
	}
	return f, nil
}

func (s *Store) ListAccepted(ctx context.Context, self uuid.UUID) ([]user.Summary, error) {
	query := `
	SELECT u.id, u.username, u.friend_code
	FROM friendships f
	JOIN users u ON u.id = CASE WHEN f.user_low = $1 THEN f.user_high ELSE f.user_low END
	WHERE (f.user_low = $1 OR f.user_high = $1) AND f.status = 'accepted'
	ORDER BY u.username, u.id`
	return s.listSummaries(ctx, "list friends", query, self)
}

func (s *Store) ListIncomingPending(ctx context.Context, self uuid.UUID) ([]user.Summary, error) {
	query := `
	SELECT u.id, u.username, u.friend_code
	FROM friendships f
	JOIN users u ON u.id = f.requester_id
	WHERE (f.user_low = $1 OR f.user_high = $1) AND f.status = 'pending' AND f.requester_id <> $1
	ORDER BY u.username, u.id`
	return s.listSummaries(ctx, "list friend requests", query, self)
}

func (s *Store) listSummaries(ctx context.Context, op, query string, self uuid.UUID) ([]user.Summary, error) {
	rows, err := s.db.Query(ctx, query, self)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	defer rows.Close()

	out := []user.Summary{}
	for rows.Next() {
		var sum user.Summary
		if err := rows.Scan(&sum.ID, &sum.Username, &sum.FriendCode); err != nil {
			return nil, apperr.Store(op, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(op, err)
	}
	return out, nil
}
