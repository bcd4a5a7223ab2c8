package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/types/friendship"
	"pillarsAPI/internal/types/user"
)

const defaultEncourageEmoji = "👏"

type friendshipStore interface {
	store.UserRepository
	store.RelationshipRepository
	SharedHabitTitles(ctx context.Context, a, b uuid.UUID) ([]string, error)
}

type FriendshipService struct {
	store friendshipStore
}

func NewFriendshipService(s friendshipStore) *FriendshipService {
	return &FriendshipService{store: s}
}

// Request sends a friend request from self to other. Repeating a request is
// safe: pending and accepted pairs are returned unchanged, declined pairs are
// reopened with self as the requester.
func (s *FriendshipService) Request(ctx context.Context, self, other uuid.UUID) (friendship.FriendshipStatus, error) {
	pair, err := friendship.Canon(self, other)
	if err != nil {
		return "", err
	}
	if _, err := s.store.GetUser(ctx, other); err != nil {
		return "", apperr.Store("request friendship", err)
	}

	status, err := s.store.RequestFriendship(ctx, pair, self)
	if err != nil {
		friendshipTransitions.WithLabelValues("request", "error").Inc()
		logger.Error("RequestFriendship: store failure", "self", self, "other", other, "err", err)
		return "", apperr.Store("request friendship", err)
	}

	friendshipTransitions.WithLabelValues("request", string(status)).Inc()
	return status, nil
}

// Accept succeeds only for the invitee of a pending request.
func (s *FriendshipService) Accept(ctx context.Context, self, other uuid.UUID) error {
	pair, err := friendship.Canon(self, other)
	if err != nil {
		return err
	}

	ok, err := s.store.AcceptFriendship(ctx, pair, self)
	if err != nil {
		friendshipTransitions.WithLabelValues("accept", "error").Inc()
		logger.Error("AcceptFriendship: store failure", "self", self, "other", other, "err", err)
		return apperr.Store("accept friendship", err)
	}
	if !ok {
		friendshipTransitions.WithLabelValues("accept", "rejected").Inc()
		return apperr.ErrNoPendingRequest
	}

	friendshipTransitions.WithLabelValues("accept", "accepted").Inc()
	return nil
}

// Decline moves a pending pair to declined for either participant. It reports
// whether anything changed; a non-pending pair is not an error.
func (s *FriendshipService) Decline(ctx context.Context, self, other uuid.UUID) (bool, error) {
	pair, err := friendship.Canon(self, other)
	if err != nil {
		return false, err
	}

	changed, err := s.store.DeclineFriendship(ctx, pair)
	if err != nil {
		friendshipTransitions.WithLabelValues("decline", "error").Inc()
		logger.Error("DeclineFriendship: store failure", "self", self, "other", other, "err", err)
		return false, apperr.Store("decline friendship", err)
	}

	result := "noop"
	if changed {
		result = "declined"
	}
	friendshipTransitions.WithLabelValues("decline", result).Inc()
	return changed, nil
}

func (s *FriendshipService) ListFriends(ctx context.Context, self uuid.UUID) ([]user.Summary, error) {
	friends, err := s.store.ListAccepted(ctx, self)
	if err != nil {
		logger.Error("ListFriends: store failure", "self", self, "err", err)
		return nil, apperr.Store("list friends", err)
	}
	return friends, nil
}

func (s *FriendshipService) ListRequests(ctx context.Context, self uuid.UUID) ([]user.Summary, error) {
	requests, err := s.store.ListIncomingPending(ctx, self)
	if err != nil {
		logger.Error("ListRequests: store failure", "self", self, "err", err)
		return nil, apperr.Store("list friend requests", err)
	}
	return requests, nil
}

// Status describes the pair from self's point of view.
func (s *FriendshipService) Status(ctx context.Context, self, other uuid.UUID) (*friendship.StatusResponse, error) {
	pair, err := friendship.Canon(self, other)
	if err != nil {
		return nil, err
	}

	f, err := s.store.GetFriendship(ctx, pair)
	if errors.Is(err, apperr.ErrNotFound) {
		return &friendship.StatusResponse{Status: friendship.FriendshipNone}, nil
	}
	if err != nil {
		logger.Error("FriendshipStatus: store failure", "self", self, "other", other, "err", err)
		return nil, apperr.Store("friendship status", err)
	}

	requester := f.RequesterID
	return &friendship.StatusResponse{
		Status:      f.Status,
		RequestedBy: &requester,
		Incoming:    f.IncomingFor(self),
	}, nil
}

// SearchByCode looks up another user by friend code.
func (s *FriendshipService) SearchByCode(ctx context.Context, self uuid.UUID, code string) (*user.Summary, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.InvalidInput("code is required")
	}

	u, err := s.store.GetUserByFriendCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error("SearchByCode: store failure", "err", err)
		}
		return nil, apperr.Store("search friend code", err)
	}
	if u.ID == self {
		return nil, apperr.InvalidInput("cannot befriend yourself")
	}

	summary := u.Summary()
	return &summary, nil
}

// SharedHabits lists habit titles both friends track. Only accepted friends
// can compare habits.
func (s *FriendshipService) SharedHabits(ctx context.Context, self, friend uuid.UUID) ([]string, error) {
	if err := s.requireAccepted(ctx, self, friend); err != nil {
		return nil, err
	}

	titles, err := s.store.SharedHabitTitles(ctx, self, friend)
	if err != nil {
		logger.Error("SharedHabits: store failure", "self", self, "friend", friend, "err", err)
		return nil, apperr.Store("shared habits", err)
	}
	return titles, nil
}

func (s *FriendshipService) Encourage(ctx context.Context, self uuid.UUID, req *friendship.EncourageRequest) (*friendship.EncourageResponse, error) {
	if err := s.requireAccepted(ctx, self, req.FriendID); err != nil {
		return nil, err
	}

	friend, err := s.store.GetUser(ctx, req.FriendID)
	if err != nil {
		return nil, apperr.Store("encourage", err)
	}

	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		emoji = defaultEncourageEmoji
	}
	name := friend.Username
	if name == "" {
		name = friend.FriendCode
	}

	text := fmt.Sprintf("%s You encouraged %s", emoji, name)
	if msg := strings.TrimSpace(req.Message); msg != "" {
		text += fmt.Sprintf(": %q", msg)
	}
	return &friendship.EncourageResponse{OK: true, Text: text}, nil
}

func (s *FriendshipService) requireAccepted(ctx context.Context, self, other uuid.UUID) error {
	pair, err := friendship.Canon(self, other)
	if err != nil {
		return err
	}

	f, err := s.store.GetFriendship(ctx, pair)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error("requireAccepted: store failure", "self", self, "other", other, "err", err)
		}
		return apperr.Store("load friendship", err)
	}
	if f.Status != friendship.FriendshipAccepted {
		return apperr.NotFound("friendship")
	}
	return nil
}
