package habit

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// DefaultPillarColor is 0xFF3B82F6 as a 32-bit ARGB value.
const DefaultPillarColor uint32 = 0xFF3B82F6

type Pillar struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       uint32    `json:"color"`
	Progress    int       `json:"progress"`
	Habits      []*Habit  `json:"habits"`
	CreatedAt   time.Time `json:"-"`
}

type Habit struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	PillarID  uuid.UUID `json:"pillarId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Streak    int       `json:"streak"`
	CreatedAt time.Time `json:"-"`
}

// ToggleResult is the state of a habit after a toggle.
type ToggleResult struct {
	Completed bool `json:"completed"`
	Streak    int  `json:"streak"`
}

// Toggle flips completion. Completing bumps the streak counter, un-completing
// decrements it without going below zero. This counter is unrelated to the
// calendar streak derived from completion events.
func Toggle(completed bool, streak int) ToggleResult {
	if !completed {
		return ToggleResult{Completed: true, Streak: streak + 1}
	}
	return ToggleResult{Completed: false, Streak: max(0, streak-1)}
}

// Event is one logged completion of a habit on a calendar day. HabitName is a
// free-text key and does not reference a Habit row.
type Event struct {
	UserID    uuid.UUID  `json:"-"`
	HabitName string     `json:"habitName"`
	Day       civil.Date `json:"date"`
}
