package sleep

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type Record struct {
	ID     uuid.UUID  `json:"id"`
	UserID uuid.UUID  `json:"-"`
	Day    civil.Date `json:"date"`
	Hours  float64    `json:"hours"`
}

type CreateRecordRequest struct {
	Date  civil.Date `json:"date"`
	Hours *float64   `json:"hours"`
}
