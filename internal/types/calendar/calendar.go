package calendar

import "cloud.google.com/go/civil"

type CalendarDay struct {
	Date      civil.Date `json:"date"`
	Completed bool       `json:"completed"`
	IsToday   bool       `json:"is_today"`
}

type CalendarResponse struct {
	HabitName string         `json:"habit_name"`
	Year      int            `json:"year"`
	Month     int            `json:"month"`
	Days      []*CalendarDay `json:"days"`
}
