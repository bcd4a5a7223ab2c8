package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"-"`
	Username   string    `json:"username"`
	FriendCode string    `json:"friendCode"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summary is the public view of another user, as shown in friend lists.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	FriendCode string    `json:"friendCode"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, FriendCode: u.FriendCode}
}
