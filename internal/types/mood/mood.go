package mood

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type Mood struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"-"`
	Score      float64    `json:"mood"`
	RecordedAt time.Time  `json:"recordedAt"`
	Day        civil.Date `json:"date"`
}

type CreateMoodRequest struct {
	Mood float64 `json:"mood"`
	Date string  `json:"date"`
}

type StreakResponse struct {
	Streak int `json:"streak"`
}
