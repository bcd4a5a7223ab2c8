// Package store declares the persistence contract used by the services. The
// postgres, sqlite and memory subpackages implement it; every mutating method
// maps onto a single conditional statement (or critical section) so concurrent
// callers observe one winner.
package store

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/migration"
	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/habit"
	"pillarsAPI/internal/types/journal"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/sleep"
	"pillarsAPI/internal/types/user"
)

type UserRepository interface {
	// EnsureUser returns the user bound to externalID, creating it with the
	// given friend code when absent. A friend code collision yields
	// apperr.ErrDuplicate.
	EnsureUser(ctx context.Context, externalID, friendCode string) (*user.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByFriendCode(ctx context.Context, code string) (*user.User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*user.User, error)
	DeleteUserByExternalID(ctx context.Context, externalID string) error
}

type RelationshipRepository interface {
	// RequestFriendship inserts a pending record or reopens a declined one and
	// returns the resulting status. Pending and accepted records are untouched.
	RequestFriendship(ctx context.Context, pair friendship.Pair, requester uuid.UUID) (friendship.FriendshipStatus, error)
	// AcceptFriendship reports false when there was no pending record that
	// actor is allowed to accept.
	AcceptFriendship(ctx context.Context, pair friendship.Pair, actor uuid.UUID) (bool, error)
	// DeclineFriendship reports false when the record was not pending.
	DeclineFriendship(ctx context.Context, pair friendship.Pair) (bool, error)
	GetFriendship(ctx context.Context, pair friendship.Pair) (*friendship.Friendship, error)
	ListAccepted(ctx context.Context, self uuid.UUID) ([]user.Summary, error)
	ListIncomingPending(ctx context.Context, self uuid.UUID) ([]user.Summary, error)
}

type EventRepository interface {
	// RecordCompletion reports whether a new event was stored; duplicates are
	// silently ignored.
	RecordCompletion(ctx context.Context, e habit.Event) (bool, error)
	DatesInWindow(ctx context.Context, userID uuid.UUID, habitName string, start, end civil.Date) ([]civil.Date, error)
}

type HabitRepository interface {
	CreatePillar(ctx context.Context, p *habit.Pillar) error
	ListPillars(ctx context.Context, userID uuid.UUID) ([]*habit.Pillar, error)
	// CreateHabit fails with apperr.ErrNotFound when the pillar is not owned by
	// the habit's user.
	CreateHabit(ctx context.Context, h *habit.Habit) error
	ToggleHabit(ctx context.Context, id, userID uuid.UUID) (habit.ToggleResult, error)
	SharedHabitTitles(ctx context.Context, a, b uuid.UUID) ([]string, error)
}

type WellnessRepository interface {
	AddMood(ctx context.Context, m *mood.Mood) error
	ListMoods(ctx context.Context, userID uuid.UUID) ([]*mood.Mood, error)
	MoodDaysInWindow(ctx context.Context, userID uuid.UUID, start, end civil.Date) ([]civil.Date, error)

	AddJournalEntry(ctx context.Context, e *journal.Entry) error
	ListJournalEntries(ctx context.Context, userID uuid.UUID) ([]*journal.Entry, error)

	AddSleep(ctx context.Context, r *sleep.Record) error
	ListSleep(ctx context.Context, userID uuid.UUID) ([]*sleep.Record, error)

	GetGoal(ctx context.Context, userID uuid.UUID) (*goal.Goal, error)
	PutGoal(ctx context.Context, userID uuid.UUID, g goal.Goal) error
}

// Store bundles every repository behind one handle.
type Store interface {
	UserRepository
	RelationshipRepository
	EventRepository
	HabitRepository
	WellnessRepository

	migration.Target

	Ping(ctx context.Context) error
	Close()
}
