// Package memory is an in-process implementation of store.Store. A single mutex
// guards all state, so each operation is one atomic read-modify-write, which is
// the same guarantee the SQL stores get from conditional statements.
package memory

import (
	"context"
	"io/fs"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/migration"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/habit"
	"pillarsAPI/internal/types/journal"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/sleep"
	"pillarsAPI/internal/types/user"
)

type eventKey struct {
	userID    uuid.UUID
	habitName string
	day       civil.Date
}

var _ store.Store = (*Store)(nil)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users       map[uuid.UUID]*user.User
	friendships map[friendship.Pair]*friendship.Friendship
	events      map[eventKey]struct{}
	pillars     map[uuid.UUID]*habit.Pillar
	habits      map[uuid.UUID]*habit.Habit
	moods       []*mood.Mood
	journals    []*journal.Entry
	sleep       []*sleep.Record
	goals       map[uuid.UUID]goal.Goal
}

func NewStore() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[uuid.UUID]*user.User),
		friendships: make(map[friendship.Pair]*friendship.Friendship),
		events:      make(map[eventKey]struct{}),
		pillars:     make(map[uuid.UUID]*habit.Pillar),
		habits:      make(map[uuid.UUID]*habit.Habit),
		goals:       make(map[uuid.UUID]goal.Goal),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// Migrations returns nil: there is no schema to initialize.
func (s *Store) Migrations() fs.FS { return nil }

func (s *Store) SchemaVersion(context.Context) (int, error) { return 0, nil }

func (s *Store) ApplyMigration(context.Context, migration.Migration) error { return nil }

// --- Users ---

func (s *Store) EnsureUser(_ context.Context, externalID, friendCode string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	for _, u := range s.users {
		if u.FriendCode == friendCode {
			return nil, apperr.ErrDuplicate
		}
	}

	now := s.now()
	u := &user.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		FriendCode: friendCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByFriendCode(_ context.Context, code string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.FriendCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (s *Store) UpdateUsername(_ context.Context, id uuid.UUID, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	for _, other := range s.users {
		if other.ID != id && username != "" && strings.EqualFold(other.Username, username) {
			return nil, apperr.ErrDuplicate
		}
	}
	u.Username = username
	u.UpdatedAt = s.now()
	cp := *u
	return &cp, nil
}

func (s *Store) DeleteUserByExternalID(_ context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.ExternalID != externalID {
			continue
		}
		delete(s.users, id)
		for p := range s.friendships {
			if p.Contains(id) {
				delete(s.friendships, p)
			}
		}
		for k := range s.events {
			if k.userID == id {
				delete(s.events, k)
			}
		}
		for hid, h := range s.habits {
			if h.UserID == id {
				delete(s.habits, hid)
			}
		}
		for pid, p := range s.pillars {
			if p.UserID == id {
				delete(s.pillars, pid)
			}
		}
		s.moods = slices.DeleteFunc(s.moods, func(m *mood.Mood) bool { return m.UserID == id })
		s.journals = slices.DeleteFunc(s.journals, func(e *journal.Entry) bool { return e.UserID == id })
		s.sleep = slices.DeleteFunc(s.sleep, func(r *sleep.Record) bool { return r.UserID == id })
		delete(s.goals, id)
		return nil
	}
	return apperr.NotFound("user")
}

// --- Relationships ---

func (s *Store) RequestFriendship(_ context.Context, pair friendship.Pair, requester uuid.UUID) (friendship.FriendshipStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[pair]
	if !ok {
		f = friendship.New(pair, requester, s.now())
		s.friendships[pair] = f
		return f.Status, nil
	}
	f.Request(requester, s.now())
	return f.Status, nil
}

func (s *Store) AcceptFriendship(_ context.Context, pair friendship.Pair, actor uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[pair]
	if !ok {
		return false, nil
	}
	return f.Accept(actor, s.now()) == nil, nil
}

func (s *Store) DeclineFriendship(_ context.Context, pair friendship.Pair) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[pair]
	if !ok {
		return false, nil
	}
	return f.Decline(s.now()), nil
}

func (s *Store) GetFriendship(_ context.Context, pair friendship.Pair) (*friendship.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.friendships[pair]
	if !ok {
		return nil, apperr.NotFound("friendship")
	}
	cp := *f
	return &cp, nil
}

func (s *Store) ListAccepted(_ context.Context, self uuid.UUID) ([]user.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectSummaries(func(f *friendship.Friendship) (uuid.UUID, bool) {
		if f.Status != friendship.FriendshipAccepted || !f.Contains(self) {
			return uuid.Nil, false
		}
		return f.Other(self), true
	}), nil
}

func (s *Store) ListIncomingPending(_ context.Context, self uuid.UUID) ([]user.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectSummaries(func(f *friendship.Friendship) (uuid.UUID, bool) {
		if !f.IncomingFor(self) {
			return uuid.Nil, false
		}
		return f.RequesterID, true
	}), nil
}

func (s *Store) collectSummaries(pick func(*friendship.Friendship) (uuid.UUID, bool)) []user.Summary {
	seen := make(map[uuid.UUID]bool)
	out := []user.Summary{}
	for _, f := range s.friendships {
		id, ok := pick(f)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.users[id]; ok {
			out = append(out, u.Summary())
		} else {
			out = append(out, user.Summary{ID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// --- Event log ---

func (s *Store) RecordCompletion(_ context.Context, e habit.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := eventKey{userID: e.UserID, habitName: e.HabitName, day: e.Day}
	if _, ok := s.events[k]; ok {
		return false, nil
	}
	s.events[k] = struct{}{}
	return true, nil
}

func (s *Store) DatesInWindow(_ context.Context, userID uuid.UUID, habitName string, start, end civil.Date) ([]civil.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := []civil.Date{}
	for k := range s.events {
		if k.userID == userID && k.habitName == habitName && inRange(k.day, start, end) {
			days = append(days, k.day)
		}
	}
	sortDays(days)
	return days, nil
}

// --- Pillars and habits ---

func (s *Store) CreatePillar(_ context.Context, p *habit.Pillar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.now()
	cp := *p
	cp.Habits = nil
	s.pillars[p.ID] = &cp
	return nil
}

func (s *Store) ListPillars(_ context.Context, userID uuid.UUID) ([]*habit.Pillar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pillars := []*habit.Pillar{}
	byID := make(map[uuid.UUID]*habit.Pillar)
	for _, p := range s.pillars {
		if p.UserID != userID {
			continue
		}
		cp := *p
		cp.Habits = []*habit.Habit{}
		pillars = append(pillars, &cp)
		byID[cp.ID] = &cp
	}
	for _, h := range s.habits {
		if p, ok := byID[h.PillarID]; ok && h.UserID == userID {
			cp := *h
			p.Habits = append(p.Habits, &cp)
		}
	}

	sort.Slice(pillars, func(i, j int) bool { return pillars[i].CreatedAt.After(pillars[j].CreatedAt) })
	for _, p := range pillars {
		sort.Slice(p.Habits, func(i, j int) bool { return p.Habits[i].CreatedAt.After(p.Habits[j].CreatedAt) })
	}
	return pillars, nil
}

func (s *Store) CreateHabit(_ context.Context, h *habit.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pillars[h.PillarID]
	if !ok || p.UserID != h.UserID {
		return apperr.NotFound("pillar")
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = s.now()
	cp := *h
	s.habits[h.ID] = &cp
	return nil
}

func (s *Store) ToggleHabit(_ context.Context, id, userID uuid.UUID) (habit.ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok || h.UserID != userID {
		return habit.ToggleResult{}, apperr.NotFound("habit")
	}
	res := habit.Toggle(h.Completed, h.Streak)
	h.Completed, h.Streak = res.Completed, res.Streak
	return res, nil
}

func (s *Store) SharedHabitTitles(_ context.Context, a, b uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mine := make(map[string]bool)
	theirs := make(map[string]bool)
	for _, h := range s.habits {
		switch h.UserID {
		case a:
			mine[h.Title] = true
		case b:
			theirs[h.Title] = true
		}
	}

	titles := []string{}
	for title := range mine {
		if theirs[title] {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

// --- Wellness ---

func (s *Store) AddMood(_ context.Context, m *mood.Mood) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	s.moods = append(s.moods, &cp)
	return nil
}

func (s *Store) ListMoods(_ context.Context, userID uuid.UUID) ([]*mood.Mood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*mood.Mood{}
	for _, m := range s.moods {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (s *Store) MoodDaysInWindow(_ context.Context, userID uuid.UUID, start, end civil.Date) ([]civil.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[civil.Date]bool)
	days := []civil.Date{}
	for _, m := range s.moods {
		if m.UserID == userID && inRange(m.Day, start, end) && !seen[m.Day] {
			seen[m.Day] = true
			days = append(days, m.Day)
		}
	}
	sortDays(days)
	return days, nil
}

func (s *Store) AddJournalEntry(_ context.Context, e *journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	s.journals = append(s.journals, &cp)
	return nil
}

func (s *Store) ListJournalEntries(_ context.Context, userID uuid.UUID) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*journal.Entry{}
	for _, e := range s.journals {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *Store) AddSleep(_ context.Context, r *sleep.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	s.sleep = append(s.sleep, &cp)
	return nil
}

func (s *Store) ListSleep(_ context.Context, userID uuid.UUID) ([]*sleep.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*sleep.Record{}
	for _, r := range s.sleep {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, userID uuid.UUID) (*goal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.goals[userID]
	return &g, nil
}

func (s *Store) PutGoal(_ context.Context, userID uuid.UUID, g goal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals[userID] = g
	return nil
}

func inRange(d, start, end civil.Date) bool {
	return !d.Before(start) && !d.After(end)
}

func sortDays(days []civil.Date) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}
