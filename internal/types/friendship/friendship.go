package friendship

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"pillarsAPI/internal/apperr"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"

	// FriendshipNone is reported for pairs with no record. It is never stored.
	FriendshipNone FriendshipStatus = "none"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipPending, FriendshipAccepted, FriendshipDeclined:
		return true
	}
	return false
}

// Pair is an unordered pair of users in canonical order: Low sorts before High.
type Pair struct {
	Low  uuid.UUID `json:"user_low"`
	High uuid.UUID `json:"user_high"`
}

// Canon orders two distinct user ids by their raw bytes, which matches how
// Postgres compares uuid values.
func Canon(x, y uuid.UUID) (Pair, error) {
	if x == uuid.Nil || y == uuid.Nil {
		return Pair{}, apperr.InvalidInput("user id is required")
	}
	switch bytes.Compare(x[:], y[:]) {
	case 0:
		return Pair{}, apperr.InvalidInput("cannot befriend yourself")
	case 1:
		x, y = y, x
	}
	return Pair{Low: x, High: y}, nil
}

// Contains reports whether id is one of the two participants.
func (p Pair) Contains(id uuid.UUID) bool {
	return id == p.Low || id == p.High
}

// Other returns the participant that is not id.
func (p Pair) Other(id uuid.UUID) uuid.UUID {
	if id == p.Low {
		return p.High
	}
	return p.Low
}

type Friendship struct {
	Pair
	RequesterID uuid.UUID        `json:"requester_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// New starts a relationship in the pending state on behalf of requester.
func New(p Pair, requester uuid.UUID, now time.Time) *Friendship {
	return &Friendship{
		Pair:        p,
		RequesterID: requester,
		Status:      FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Request applies a repeated request from actor. Pending and accepted records
// are left alone; a declined record is reopened with actor as the requester.
func (f *Friendship) Request(actor uuid.UUID, now time.Time) bool {
	if f.Status != FriendshipDeclined {
		return false
	}
	f.RequesterID = actor
	f.Status = FriendshipPending
	f.UpdatedAt = now
	return true
}

// Accept moves a pending record to accepted. Only the invitee may accept.
func (f *Friendship) Accept(actor uuid.UUID, now time.Time) error {
	if f.Status != FriendshipPending || f.RequesterID == actor || !f.Contains(actor) {
		return apperr.ErrNoPendingRequest
	}
	f.Status = FriendshipAccepted
	f.UpdatedAt = now
	return nil
}

// Decline moves a pending record to declined for either participant. It reports
// false when nothing changed.
func (f *Friendship) Decline(now time.Time) bool {
	if f.Status != FriendshipPending {
		return false
	}
	f.Status = FriendshipDeclined
	f.UpdatedAt = now
	return true
}

// IncomingFor reports whether the record is a pending request awaiting self.
func (f *Friendship) IncomingFor(self uuid.UUID) bool {
	return f.Status == FriendshipPending && f.Contains(self) && f.RequesterID != self
}

type FriendRequest struct {
	FriendID uuid.UUID `json:"friendId"`
}

type SearchRequest struct {
	Code string `json:"code"`
}

type EncourageRequest struct {
	FriendID uuid.UUID `json:"friendId"`
	Emoji    string    `json:"emoji"`
	Message  string    `json:"message"`
}

type StatusResponse struct {
	Status      FriendshipStatus `json:"status"`
	RequestedBy *uuid.UUID       `json:"requested_by,omitempty"`
	Incoming    bool             `json:"incoming"`
}

// EncourageResponse echoes the encouragement back to the sender. Nothing is
// stored or delivered.
type EncourageResponse struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}
