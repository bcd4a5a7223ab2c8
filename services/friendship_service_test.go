package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/store/memory"
	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/internal/types/habit"
	"pillarsAPI/internal/types/user"
)

type friendshipFixture struct {
	store   *memory.Store
	users   *UserService
	friends *FriendshipService
	a, b    *user.User
}

func newFriendshipFixture(t *testing.T) *friendshipFixture {
	t.Helper()
	s := memory.NewStore()
	users := NewUserService(s)
	ctx := context.Background()

	a, err := users.SyncExternalUser(ctx, "user_alice", "alice")
	require.NoError(t, err)
	b, err := users.SyncExternalUser(ctx, "user_bob", "bob")
	require.NoError(t, err)

	return &friendshipFixture{store: s, users: users, friends: NewFriendshipService(s), a: a, b: b}
}

func TestRequestIsIdempotent(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		status, err := f.friends.Request(ctx, f.a.ID, f.b.ID)
		require.NoError(t, err)
		assert.Equal(t, friendship.FriendshipPending, status)
	}

	requests, err := f.friends.ListRequests(ctx, f.b.ID)
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestRequestValidation(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()

	_, err := f.friends.Request(ctx, f.a.ID, f.a.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.friends.Request(ctx, f.a.ID, uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.friends.Request(ctx, f.a.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOnlyInviteeCanAccept(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()

	_, err := f.friends.Request(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.friends.Accept(ctx, f.a.ID, f.b.ID), apperr.ErrNoPendingRequest)
	require.NoError(t, f.friends.Accept(ctx, f.b.ID, f.a.ID))
	assert.ErrorIs(t, f.friends.Accept(ctx, f.b.ID, f.a.ID), apperr.ErrNoPendingRequest)

	status, err := f.friends.Request(ctx, f.b.ID, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipAccepted, status)

	friendsOfA, err := f.friends.ListFriends(ctx, f.a.ID)
	require.NoError(t, err)
	require.Len(t, friendsOfA, 1)
	assert.Equal(t, "bob", friendsOfA[0].Username)
}

func TestAcceptWithoutRecord(t *testing.T) {
	f := newFriendshipFixture(t)
	assert.ErrorIs(t, f.friends.Accept(context.Background(), f.b.ID, f.a.ID), apperr.ErrNoPendingRequest)
}

func TestDeclineCycleEndsWithLastRequester(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()

	_, err := f.friends.Request(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)

	changed, err := f.friends.Decline(ctx, f.b.ID, f.a.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.friends.Decline(ctx, f.b.ID, f.a.ID)
	require.NoError(t, err)
	assert.False(t, changed, "declining twice is a no-op")

	_, err = f.friends.Request(ctx, f.b.ID, f.a.ID)
	require.NoError(t, err)

	st, err := f.friends.Status(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipPending, st.Status)
	assert.True(t, st.Incoming)
	require.NotNil(t, st.RequestedBy)
	assert.Equal(t, f.b.ID, *st.RequestedBy)

	require.NoError(t, f.friends.Accept(ctx, f.a.ID, f.b.ID))

	st, err = f.friends.Status(ctx, f.b.ID, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipAccepted, st.Status)
	assert.Equal(t, f.b.ID, *st.RequestedBy)
}

func TestStatusWithoutRecord(t *testing.T) {
	f := newFriendshipFixture(t)

	st, err := f.friends.Status(context.Background(), f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, friendship.FriendshipNone, st.Status)
	assert.Nil(t, st.RequestedBy)
}

func TestSearchByCode(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()

	found, err := f.friends.SearchByCode(ctx, f.a.ID, " "+f.b.FriendCode+" ")
	require.NoError(t, err)
	assert.Equal(t, f.b.ID, found.ID)

	_, err = f.friends.SearchByCode(ctx, f.a.ID, f.a.FriendCode)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.friends.SearchByCode(ctx, f.a.ID, "NOPE0000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.friends.SearchByCode(ctx, f.a.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSharedHabitsRequireFriendship(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	habits := NewHabitService(f.store)

	for _, u := range []*user.User{f.a, f.b} {
		p, err := habits.CreatePillar(ctx, u.ID, &habit.CreatePillarRequest{Title: "Mind"})
		require.NoError(t, err)
		_, err = habits.CreateHabit(ctx, u.ID, p.ID, &habit.CreateHabitRequest{Title: "Meditate"})
		require.NoError(t, err)
	}

	_, err := f.friends.SharedHabits(ctx, f.a.ID, f.b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.friends.Request(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	require.NoError(t, f.friends.Accept(ctx, f.b.ID, f.a.ID))

	titles, err := f.friends.SharedHabits(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Meditate"}, titles)
}

func TestEncourage(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()

	_, err := f.friends.Encourage(ctx, f.a.ID, &friendship.EncourageRequest{FriendID: f.b.ID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.friends.Request(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	require.NoError(t, f.friends.Accept(ctx, f.b.ID, f.a.ID))

	resp, err := f.friends.Encourage(ctx, f.a.ID, &friendship.EncourageRequest{FriendID: f.b.ID, Message: "keep going"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, `👏 You encouraged bob: "keep going"`, resp.Text)
}
