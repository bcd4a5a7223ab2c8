package services

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/store"
	"pillarsAPI/internal/types/user"
)

const (
	friendCodeLength   = 8
	friendCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	friendCodeAttempts = 5

	minUsernameLength = 3
	maxUsernameLength = 30
)

type UserService struct {
	store store.UserRepository
}

func NewUserService(s store.UserRepository) *UserService {
	return &UserService{store: s}
}

// EnsureUser resolves an authenticated subject to the internal user,
// provisioning one with a fresh friend code on first sight.
func (s *UserService) EnsureUser(ctx context.Context, externalID string) (*user.User, error) {
	if externalID == "" {
		return nil, apperr.InvalidInput("subject is required")
	}

	for attempt := 0; attempt < friendCodeAttempts; attempt++ {
		code, err := generateFriendCode()
		if err != nil {
			return nil, apperr.Store("generate friend code", err)
		}

		u, err := s.store.EnsureUser(ctx, externalID, code)
		if errors.Is(err, apperr.ErrDuplicate) {
			logger.Warn("EnsureUser: friend code collision, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			logger.Error("EnsureUser: failed to provision user", "err", err)
			return nil, apperr.Store("ensure user", err)
		}
		return u, nil
	}

	return nil, apperr.Store("ensure user", errors.New("could not allocate a unique friend code"))
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error("GetUser: failed to load user", "user", id, "err", err)
		}
		return nil, apperr.Store("get user", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	username := strings.TrimSpace(req.Username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, apperr.InvalidInput("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}

	u, err := s.store.UpdateUsername(ctx, id, username)
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.ErrDuplicate
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error("UpdateProfile: failed to update username", "user", id, "err", err)
		}
		return nil, apperr.Store("update profile", err)
	}
	return u, nil
}

func (s *UserService) GetFriendCode(ctx context.Context, id uuid.UUID) (*user.FriendCodeResponse, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user.FriendCodeResponse{FriendCode: u.FriendCode}, nil
}

// SyncExternalUser applies a user.created or user.updated event from the
// identity provider. A username already taken locally is left unchanged.
func (s *UserService) SyncExternalUser(ctx context.Context, externalID, username string) (*user.User, error) {
	u, err := s.EnsureUser(ctx, externalID)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" || username == u.Username {
		return u, nil
	}

	updated, err := s.UpdateProfile(ctx, u.ID, &user.UpdateProfileRequest{Username: username})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicate) || errors.Is(err, apperr.ErrInvalidInput) {
			logger.Warn("SyncExternalUser: keeping existing username", "user", u.ID, "reason", err)
			return u, nil
		}
		return nil, err
	}
	return updated, nil
}

// DeleteUserByExternalID removes the user and everything they own. Deleting an
// unknown user is a no-op.
func (s *UserService) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	err := s.store.DeleteUserByExternalID(ctx, externalID)
	if err == nil || errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	logger.Error("DeleteUserByExternalID: failed to delete user", "err", err)
	return apperr.Store("delete user", err)
}

func generateFriendCode() (string, error) {
	buf := make([]byte, friendCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = friendCodeAlphabet[int(b)%len(friendCodeAlphabet)]
	}
	return string(buf), nil
}
