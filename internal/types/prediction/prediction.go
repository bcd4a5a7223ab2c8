package prediction

import (
	"errors"
	"fmt"
	"strings"

	"pillarsAPI/internal/apperr"
)

// Features are the optional signals forwarded to the external predictor.
type Features struct {
	Last7Count            *int     `json:"last7Count,omitempty"`
	Last30Count           *int     `json:"last30Count,omitempty"`
	WeeklyFrequencyTarget *int     `json:"weeklyFrequencyTarget,omitempty"`
	Last7Days             []bool   `json:"last7Days,omitempty"`
	TimeOfDay             string   `json:"timeOfDay,omitempty"`
	SleepHoursAvg         *float64 `json:"sleepHoursAvg,omitempty"`
	StressLevel           *int     `json:"stressLevel,omitempty"`
}

type Request struct {
	HabitName     string   `json:"habitName"`
	CurrentStreak int      `json:"currentStreak"`
	Reflection    string   `json:"reflection"`
	Features      Features `json:"features"`
}

type Prediction struct {
	SuccessProbability int      `json:"successProbability"`
	Recommendation     string   `json:"recommendation"`
	RiskFactors        []string `json:"riskFactors"`
	Rationale          string   `json:"rationale"`
}

// Signals are the aggregates computed from a user's completion history.
type Signals struct {
	Last7Count            int    `json:"last7Count"`
	Last30Count           int    `json:"last30Count"`
	CurrentStreak         int    `json:"currentStreak"`
	WeeklyFrequencyTarget int    `json:"weeklyFrequencyTarget"`
	Last7Days             []bool `json:"last7Days"`
}

// Features converts computed signals into the predictor's feature payload.
func (s Signals) Features() Features {
	last7, last30, target := s.Last7Count, s.Last30Count, s.WeeklyFrequencyTarget
	return Features{
		Last7Count:            &last7,
		Last30Count:           &last30,
		WeeklyFrequencyTarget: &target,
		Last7Days:             s.Last7Days,
	}
}

type FromHistoryRequest struct {
	HabitName             string `json:"habitName"`
	WeeklyFrequencyTarget *int   `json:"weeklyFrequencyTarget,omitempty"`
	Reflection            string `json:"reflection"`
}

type FromHistoryResponse struct {
	Prediction
	Signals Signals `json:"signals"`
}

// AnalyzeRequest asks for a short reflection on a mood note. Goals default to
// the user's stored goals when left empty.
type AnalyzeRequest struct {
	Note  string `json:"note"`
	Goals string `json:"goals"`
}

type Insight struct {
	Insight string `json:"insight"`
}

// Validate checks the ranges accepted from clients.
func (r Request) Validate() error {
	if strings.TrimSpace(r.HabitName) == "" {
		return apperr.InvalidInput("habitName is required")
	}
	if r.CurrentStreak < 0 {
		return apperr.InvalidInput("currentStreak must be non-negative")
	}

	f := r.Features
	switch {
	case f.Last7Count != nil && (*f.Last7Count < 0 || *f.Last7Count > 7):
		return apperr.InvalidInput("last7Count must be between 0 and 7")
	case f.Last30Count != nil && (*f.Last30Count < 0 || *f.Last30Count > 31):
		return apperr.InvalidInput("last30Count must be between 0 and 31")
	case f.WeeklyFrequencyTarget != nil && (*f.WeeklyFrequencyTarget < 1 || *f.WeeklyFrequencyTarget > 7):
		return apperr.InvalidInput("weeklyFrequencyTarget must be between 1 and 7")
	case len(f.Last7Days) > 7:
		return apperr.InvalidInput("last7Days holds at most 7 entries")
	case f.StressLevel != nil && (*f.StressLevel < 1 || *f.StressLevel > 10):
		return apperr.InvalidInput("stressLevel must be between 1 and 10")
	}
	return nil
}

// Validate rejects predictor output that cannot be shown to a user.
func (p *Prediction) Validate() error {
	if p.SuccessProbability < 0 || p.SuccessProbability > 100 {
		return fmt.Errorf("successProbability %d out of range", p.SuccessProbability)
	}
	if strings.TrimSpace(p.Recommendation) == "" {
		return errors.New("empty recommendation")
	}
	if p.RiskFactors == nil {
		p.RiskFactors = []string{}
	}
	return nil
}
