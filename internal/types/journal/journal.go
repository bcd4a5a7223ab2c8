package journal

import (
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Title     string    `json:"title"`
	Entry     string    `json:"entry"`
	Timestamp time.Time `json:"timestamp"`
	Mood      *string   `json:"mood"`
	Tags      []string  `json:"tags"`
	Gratitude []string  `json:"gratitude"`
}

type CreateEntryRequest struct {
	Title     string     `json:"title"`
	Entry     string     `json:"entry"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Mood      *string    `json:"mood,omitempty"`
	Tags      []string   `json:"tags"`
	Gratitude []string   `json:"gratitude"`
}
