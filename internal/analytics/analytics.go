// Package analytics derives streaks and rolling-window counts from the set of
// calendar days on which something was logged. Every function takes "today"
// explicitly; callers capture it once per request.
package analytics

import (
	"time"

	"cloud.google.com/go/civil"

	"pillarsAPI/internal/types/prediction"
)

const (
	ShortWindow = 7
	LongWindow  = 30

	DefaultWeeklyTarget = 5
)

// DaySet is a set of calendar days.
type DaySet map[civil.Date]struct{}

func NewDaySet(days ...civil.Date) DaySet {
	set := make(DaySet, len(days))
	for _, d := range days {
		set.Add(d)
	}
	return set
}

func (s DaySet) Add(d civil.Date) {
	s[d] = struct{}{}
}

func (s DaySet) Has(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

// Window returns the inclusive bounds of a size-day window ending on today.
func Window(today civil.Date, size int) (start, end civil.Date) {
	return today.AddDays(-(size - 1)), today
}

// CountInWindow counts the days of set that fall inside the size-day window
// ending on today.
func CountInWindow(set DaySet, today civil.Date, size int) int {
	start, _ := Window(today, size)
	n := 0
	for d := range set {
		if !d.Before(start) && !d.After(today) {
			n++
		}
	}
	return n
}

// CurrentStreak walks back from today one day at a time and counts consecutive
// days present in set. A missing today yields zero.
func CurrentStreak(set DaySet, today civil.Date) int {
	streak := 0
	for day := today; set.Has(day); day = day.AddDays(-1) {
		streak++
	}
	return streak
}

// LastDays reports presence for each of the n days ending on today, oldest first.
func LastDays(set DaySet, today civil.Date, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = set.Has(today.AddDays(i - (n - 1)))
	}
	return out
}

// Compute builds the feature vector handed to the predictor. set must hold at
// least the LongWindow days ending on today.
func Compute(set DaySet, today civil.Date, weeklyTarget int) prediction.Signals {
	if weeklyTarget <= 0 {
		weeklyTarget = DefaultWeeklyTarget
	}
	return prediction.Signals{
		Last7Count:            CountInWindow(set, today, ShortWindow),
		Last30Count:           CountInWindow(set, today, LongWindow),
		CurrentStreak:         CurrentStreak(set, today),
		WeeklyFrequencyTarget: weeklyTarget,
		Last7Days:             LastDays(set, today, ShortWindow),
	}
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

// MonthBounds returns the first and last day of a calendar month.
func MonthBounds(year int, month time.Month) (first, last civil.Date) {
	first = civil.Date{Year: year, Month: month, Day: 1}
	t := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return first, civil.DateOf(t)
}
