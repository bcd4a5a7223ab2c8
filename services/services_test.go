package services

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"

	"pillarsAPI/internal/types/prediction"
)

type stubPredictor struct {
	calls     int
	last      prediction.Request
	resp      *prediction.Prediction
	err       error
	lastNote  string
	lastGoals string
	insight   string
}

func (p *stubPredictor) Predict(_ context.Context, req prediction.Request) (*prediction.Prediction, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func (p *stubPredictor) AnalyzeMood(_ context.Context, note, goals string) (string, error) {
	p.calls++
	p.lastNote, p.lastGoals = note, goals
	if p.err != nil {
		return "", p.err
	}
	return p.insight, nil
}

var errUpstream = errors.New("upstream unavailable")

// fixedClock returns a clock stopped at noon UTC on d.
func fixedClock(d civil.Date) func() time.Time {
	return func() time.Time { return d.In(time.UTC).Add(12 * time.Hour) }
}
