package habit

import "cloud.google.com/go/civil"

type CreatePillarRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       *uint32 `json:"color,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
}

type CreateHabitRequest struct {
	Title string `json:"title"`
}

type CompleteRequest struct {
	HabitName string     `json:"habitName"`
	Date      civil.Date `json:"date"`
}

type CompleteResponse struct {
	OK       bool `json:"ok"`
	Recorded bool `json:"recorded"`
}
