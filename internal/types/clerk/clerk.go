package clerk

import "encoding/json"

// WebhookEvent is the envelope Clerk posts to /webhooks/clerk.
type WebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type UserData struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Deleted   bool   `json:"deleted"`
}

// DisplayName prefers the username and falls back to the full name.
func (u UserData) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName + u.LastName
}
