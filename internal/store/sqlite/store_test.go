package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/migration"
	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/habit"
	"pillarsAPI/internal/types/journal"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/sleep"
	"pillarsAPI/internal/types/user"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(s.Close)

	n, err := migration.NewRunner(s).ApplyMigrations(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return s
}

func createUser(t *testing.T, s *Store, code string) *user.User {
	t.Helper()
	u, err := s.EnsureUser(context.Background(), "ext_"+code, code)
	require.NoError(t, err)
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	n, err := migration.NewRunner(s).ApplyMigrations(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.NoError(t, migration.NewRunner(s).ValidateVersion(ctx))
}

func TestEnsureUser(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	u := createUser(t, s, "SQL00001")
	again, err := s.EnsureUser(ctx, u.ExternalID, "SQL00002")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "SQL00001", again.FriendCode)

	_, err = s.EnsureUser(ctx, "ext_someone_else", "SQL00001")
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	found, err := s.GetUserByFriendCode(ctx, "SQL00001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateUsernameRejectsDuplicates(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	a, b := createUser(t, s, "SQLNAME1"), createUser(t, s, "SQLNAME2")

	updated, err := s.UpdateUsername(ctx, a.ID, "river")
	require.NoError(t, err)
	assert.Equal(t, "river", updated.Username)

	_, err = s.UpdateUsername(ctx, b.ID, "River")
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestFriendshipStateMachine(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	a, b := createUser(t, s, "SQLFRND1"), createUser(t, s, "SQLFRND2")
	p, err := friendship.Canon(a.ID, b.ID)
	require.NoError(t, err)

	status, err := s.RequestFriendship(ctx, p, a.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipPending, status)

	status, err = s.RequestFriendship(ctx, p, b.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipPending, status)

	f, err := s.GetFriendship(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, a.ID, f.RequesterID)

	incoming, err := s.ListIncomingPending(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, a.ID, incoming[0].ID)

	outgoing, err := s.ListIncomingPending(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	ok, err := s.AcceptFriendship(ctx, p, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.AcceptFriendship(ctx, p, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AcceptFriendship(ctx, p, b.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second accept finds nothing pending")

	ok, err = s.DeclineFriendship(ctx, p)
	require.NoError(t, err)
	assert.False(t, ok)

	status, err = s.RequestFriendship(ctx, p, a.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipAccepted, status)

	friends, err := s.ListAccepted(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, b.ID, friends[0].ID)
	assert.Equal(t, "SQLFRND2", friends[0].FriendCode)
}

func TestAcceptDeclineRaceHasOneWinner(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for round := 0; round < 25; round++ {
		a := createUser(t, s, fmt.Sprintf("RACEA%03d", round))
		b := createUser(t, s, fmt.Sprintf("RACEB%03d", round))
		p, err := friendship.Canon(a.ID, b.ID)
		require.NoError(t, err)
		_, err = s.RequestFriendship(ctx, p, a.ID)
		require.NoError(t, err)

		var (
			wg               sync.WaitGroup
			accepted, denied bool
		)
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			ok, err := s.AcceptFriendship(ctx, p, b.ID)
			assert.NoError(t, err)
			accepted = ok
		}()
		go func() {
			defer wg.Done()
			<-start
			ok, err := s.DeclineFriendship(ctx, p)
			assert.NoError(t, err)
			denied = ok
		}()
		close(start)
		wg.Wait()

		require.True(t, accepted != denied, "round %d: exactly one transition must apply", round)

		f, err := s.GetFriendship(ctx, p)
		require.NoError(t, err)
		if accepted {
			assert.Equal(t, friendship.FriendshipAccepted, f.Status)
		} else {
			assert.Equal(t, friendship.FriendshipDeclined, f.Status)
		}
	}
}

func TestDeclineThenReopen(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	a, b := createUser(t, s, "SQLDECL1"), createUser(t, s, "SQLDECL2")
	p, err := friendship.Canon(a.ID, b.ID)
	require.NoError(t, err)

	_, err = s.RequestFriendship(ctx, p, a.ID)
	require.NoError(t, err)
	ok, err := s.DeclineFriendship(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	status, err := s.RequestFriendship(ctx, p, b.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipPending, status)

	f, err := s.GetFriendship(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, b.ID, f.RequesterID)
}

func TestCompletionEvents(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "SQLEVNT1")
	today := civil.Date{Year: 2024, Month: 1, Day: 2}

	stored, err := s.RecordCompletion(ctx, habit.Event{UserID: u.ID, HabitName: "read", Day: today})
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = s.RecordCompletion(ctx, habit.Event{UserID: u.ID, HabitName: "read", Day: today})
	require.NoError(t, err)
	assert.False(t, stored)

	for _, d := range []civil.Date{today.AddDays(-1), today.AddDays(-2), today.AddDays(-30)} {
		_, err := s.RecordCompletion(ctx, habit.Event{UserID: u.ID, HabitName: "read", Day: d})
		require.NoError(t, err)
	}

	days, err := s.DatesInWindow(ctx, u.ID, "read", today.AddDays(-29), today)
	require.NoError(t, err)
	assert.Equal(t, []civil.Date{today.AddDays(-2), today.AddDays(-1), today}, days)

	days, err = s.DatesInWindow(ctx, u.ID, "write", today.AddDays(-29), today)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestPillarsAndHabits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	owner, other := createUser(t, s, "SQLHBT01"), createUser(t, s, "SQLHBT02")

	p := &habit.Pillar{UserID: owner.ID, Title: "Health", Color: habit.DefaultPillarColor, Progress: 40}
	require.NoError(t, s.CreatePillar(ctx, p))

	err := s.CreateHabit(ctx, &habit.Habit{UserID: other.ID, PillarID: p.ID, Title: "Swim"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	h := &habit.Habit{UserID: owner.ID, PillarID: p.ID, Title: "Swim"}
	require.NoError(t, s.CreateHabit(ctx, h))
	assert.False(t, h.Completed)

	res, err := s.ToggleHabit(ctx, h.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, habit.ToggleResult{Completed: true, Streak: 1}, res)

	res, err = s.ToggleHabit(ctx, h.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, habit.ToggleResult{Completed: false, Streak: 0}, res)

	_, err = s.ToggleHabit(ctx, h.ID, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	pillars, err := s.ListPillars(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, pillars, 1)
	assert.Equal(t, habit.DefaultPillarColor, pillars[0].Color)
	assert.Equal(t, 40, pillars[0].Progress)
	require.Len(t, pillars[0].Habits, 1)
	assert.Equal(t, "Swim", pillars[0].Habits[0].Title)

	otherPillar := &habit.Pillar{UserID: other.ID, Title: "Fitness"}
	require.NoError(t, s.CreatePillar(ctx, otherPillar))
	require.NoError(t, s.CreateHabit(ctx, &habit.Habit{UserID: other.ID, PillarID: otherPillar.ID, Title: "Swim"}))

	shared, err := s.SharedHabitTitles(ctx, owner.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Swim"}, shared)
}

func TestWellnessRecords(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "SQLWELL1")
	day := civil.Date{Year: 2024, Month: 5, Day: 20}
	now := time.Date(2024, 5, 20, 21, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddMood(ctx, &mood.Mood{UserID: u.ID, Score: 4, RecordedAt: now, Day: day}))
	require.NoError(t, s.AddMood(ctx, &mood.Mood{UserID: u.ID, Score: 2, RecordedAt: now.Add(time.Hour), Day: day}))

	moods, err := s.ListMoods(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, moods, 2)
	assert.Equal(t, 4.0, moods[0].Score)

	days, err := s.MoodDaysInWindow(ctx, u.ID, day.AddDays(-29), day)
	require.NoError(t, err)
	assert.Equal(t, []civil.Date{day}, days)

	label := "calm"
	require.NoError(t, s.AddJournalEntry(ctx, &journal.Entry{
		UserID: u.ID, Title: "Evening", Entry: "Quiet walk", Timestamp: now, Mood: &label, Gratitude: []string{"sun"},
	}))
	entries, err := s.ListJournalEntries(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Mood)
	assert.Equal(t, "calm", *entries[0].Mood)
	assert.Equal(t, []string{}, entries[0].Tags)
	assert.Equal(t, []string{"sun"}, entries[0].Gratitude)
	assert.True(t, now.Equal(entries[0].Timestamp))

	require.NoError(t, s.AddSleep(ctx, &sleep.Record{UserID: u.ID, Day: day, Hours: 7.5}))
	records, err := s.ListSleep(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day, records[0].Day)

	g, err := s.GetGoal(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "", g.Goals)

	require.NoError(t, s.PutGoal(ctx, u.ID, goal.Goal{Goals: "sleep more"}))
	require.NoError(t, s.PutGoal(ctx, u.ID, goal.Goal{Goals: "sleep 8h"}))
	g, err = s.GetGoal(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "sleep 8h", g.Goals)
}

func TestDeleteUserCascades(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	a, b := createUser(t, s, "SQLDEL01"), createUser(t, s, "SQLDEL02")
	p, err := friendship.Canon(a.ID, b.ID)
	require.NoError(t, err)
	_, err = s.RequestFriendship(ctx, p, a.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUserByExternalID(ctx, a.ExternalID))

	_, err = s.GetFriendship(ctx, p)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUserByExternalID(ctx, a.ExternalID), apperr.ErrNotFound)
}
