package services

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillarsAPI/internal/analytics"
	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/store/memory"
	"pillarsAPI/internal/types/goal"
	"pillarsAPI/internal/types/habit"
	"pillarsAPI/internal/types/mood"
	"pillarsAPI/internal/types/prediction"
)

type analyticsFixture struct {
	store     *memory.Store
	svc       *AnalyticsService
	predictor *stubPredictor
	user      uuid.UUID
	today     civil.Date
}

func newAnalyticsFixture(t *testing.T, today civil.Date) *analyticsFixture {
	t.Helper()
	s := memory.NewStore()
	p := &stubPredictor{resp: &prediction.Prediction{SuccessProbability: 64, Recommendation: "Keep the morning slot", RiskFactors: []string{}}}
	svc := NewAnalyticsService(s, p, time.UTC)
	svc.now = fixedClock(today)
	return &analyticsFixture{store: s, svc: svc, predictor: p, user: uuid.New(), today: today}
}

func (f *analyticsFixture) complete(t *testing.T, habitName string, days ...civil.Date) {
	t.Helper()
	for _, d := range days {
		_, err := f.store.RecordCompletion(context.Background(), habit.Event{UserID: f.user, HabitName: habitName, Day: d})
		require.NoError(t, err)
	}
}

func TestSignalsStreakScenario(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 1, Day: 3}

	f := newAnalyticsFixture(t, today)
	f.complete(t, "read", civil.Date{Year: 2024, Month: 1, Day: 1}, civil.Date{Year: 2024, Month: 1, Day: 2}, today)
	sig, err := f.svc.Signals(context.Background(), f.user, "read", analytics.DefaultWeeklyTarget)
	require.NoError(t, err)
	assert.Equal(t, 3, sig.CurrentStreak)
	assert.Equal(t, 5, sig.WeeklyFrequencyTarget)

	f = newAnalyticsFixture(t, today)
	f.complete(t, "read", civil.Date{Year: 2024, Month: 1, Day: 1}, today)
	sig, err = f.svc.Signals(context.Background(), f.user, "read", analytics.DefaultWeeklyTarget)
	require.NoError(t, err)
	assert.Equal(t, 1, sig.CurrentStreak)
}

func TestSignalsWindowScenario(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 3, Day: 15}
	f := newAnalyticsFixture(t, today)

	f.complete(t, "run", today, today.AddDays(-2), today.AddDays(-6))
	for i := 7; i < 17; i++ {
		f.complete(t, "run", today.AddDays(-i))
	}
	f.complete(t, "run", today.AddDays(-30), today.AddDays(-45))

	sig, err := f.svc.Signals(context.Background(), f.user, "run", 4)
	require.NoError(t, err)
	assert.Equal(t, 3, sig.Last7Count)
	assert.Equal(t, 13, sig.Last30Count)
	assert.Equal(t, 1, sig.CurrentStreak)
	assert.Equal(t, 4, sig.WeeklyFrequencyTarget)
	assert.Equal(t, []bool{true, false, false, false, true, false, true}, sig.Last7Days)
}

func TestSignalsEmptyLog(t *testing.T) {
	f := newAnalyticsFixture(t, civil.Date{Year: 2024, Month: 6, Day: 1})

	sig, err := f.svc.Signals(context.Background(), f.user, "nothing", analytics.DefaultWeeklyTarget)
	require.NoError(t, err)
	assert.Equal(t, 0, sig.Last7Count)
	assert.Equal(t, 0, sig.Last30Count)
	assert.Equal(t, 0, sig.CurrentStreak)
}

func TestSignalsStreakBeyondWindow(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 4, Day: 10}
	f := newAnalyticsFixture(t, today)

	for i := 0; i < 45; i++ {
		f.complete(t, "stretch", today.AddDays(-i))
	}

	sig, err := f.svc.Signals(context.Background(), f.user, "stretch", analytics.DefaultWeeklyTarget)
	require.NoError(t, err)
	assert.Equal(t, 45, sig.CurrentStreak)
	assert.Equal(t, 30, sig.Last30Count)
	assert.Equal(t, 7, sig.Last7Count)
}

func TestSignalsValidation(t *testing.T) {
	f := newAnalyticsFixture(t, civil.Date{Year: 2024, Month: 6, Day: 1})

	_, err := f.svc.Signals(context.Background(), f.user, "  ", analytics.DefaultWeeklyTarget)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Signals(context.Background(), f.user, "read", 9)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Signals(context.Background(), f.user, "read", 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestMoodStreakIgnoresTimeOfDay(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 3, Day: 1}
	f := newAnalyticsFixture(t, today)
	ctx := context.Background()

	for _, d := range []civil.Date{today, today.AddDays(-1), today.AddDays(-3)} {
		require.NoError(t, f.store.AddMood(ctx, &mood.Mood{UserID: f.user, Score: 3, Day: d, RecordedAt: d.In(time.UTC).Add(23 * time.Hour)}))
	}

	streak, err := f.svc.MoodStreak(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestCalendar(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 2, Day: 10}
	f := newAnalyticsFixture(t, today)
	f.complete(t, "read", civil.Date{Year: 2024, Month: 2, Day: 1}, civil.Date{Year: 2024, Month: 2, Day: 29}, civil.Date{Year: 2024, Month: 3, Day: 1})

	cal, err := f.svc.Calendar(context.Background(), f.user, "read", 2024, 2)
	require.NoError(t, err)
	require.Len(t, cal.Days, 29)
	assert.True(t, cal.Days[0].Completed)
	assert.True(t, cal.Days[28].Completed)
	assert.False(t, cal.Days[1].Completed)
	assert.True(t, cal.Days[9].IsToday)

	_, err = f.svc.Calendar(context.Background(), f.user, "read", 2024, 13)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestPredictValidatesRequest(t *testing.T) {
	f := newAnalyticsFixture(t, civil.Date{Year: 2024, Month: 6, Day: 1})
	stress := 11

	_, err := f.svc.Predict(context.Background(), &prediction.Request{HabitName: "read", Features: prediction.Features{StressLevel: &stress}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 0, f.predictor.calls)

	p, err := f.svc.Predict(context.Background(), &prediction.Request{HabitName: "read", CurrentStreak: 2})
	require.NoError(t, err)
	assert.Equal(t, 64, p.SuccessProbability)
	assert.Equal(t, 1, f.predictor.calls)
}

func TestPredictFromHistoryForwardsSignals(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 1, Day: 3}
	f := newAnalyticsFixture(t, today)
	f.complete(t, "read", today.AddDays(-1), today)
	target := 3

	resp, err := f.svc.PredictFromHistory(context.Background(), f.user, &prediction.FromHistoryRequest{
		HabitName: "read", WeeklyFrequencyTarget: &target, Reflection: "tired",
	})
	require.NoError(t, err)
	assert.Equal(t, 64, resp.SuccessProbability)
	assert.Equal(t, 2, resp.Signals.CurrentStreak)

	sent := f.predictor.last
	assert.Equal(t, "read", sent.HabitName)
	assert.Equal(t, 2, sent.CurrentStreak)
	assert.Equal(t, "tired", sent.Reflection)
	require.NotNil(t, sent.Features.Last7Count)
	assert.Equal(t, 2, *sent.Features.Last7Count)
	assert.Equal(t, 3, *sent.Features.WeeklyFrequencyTarget)
}

func TestPredictFromHistoryDegradesOnPredictorFailure(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 1, Day: 3}
	f := newAnalyticsFixture(t, today)
	f.complete(t, "read", today)
	f.predictor.err = errUpstream

	resp, err := f.svc.PredictFromHistory(context.Background(), f.user, &prediction.FromHistoryRequest{HabitName: "read"})
	assert.ErrorIs(t, err, apperr.ErrPredictorFailure)
	assert.NotErrorIs(t, err, apperr.ErrStoreFailure)
	require.NotNil(t, resp)
	assert.Equal(t, 1, resp.Signals.CurrentStreak)
	assert.Equal(t, 5, resp.Signals.WeeklyFrequencyTarget)
}

func TestPredictFromHistoryValidation(t *testing.T) {
	f := newAnalyticsFixture(t, civil.Date{Year: 2024, Month: 1, Day: 3})
	zero := 0

	_, err := f.svc.PredictFromHistory(context.Background(), f.user, &prediction.FromHistoryRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.PredictFromHistory(context.Background(), f.user, &prediction.FromHistoryRequest{HabitName: "read", WeeklyFrequencyTarget: &zero})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 0, f.predictor.calls)
}

func TestAnalyzeMoodUsesStoredGoals(t *testing.T) {
	f := newAnalyticsFixture(t, civil.Date{Year: 2024, Month: 6, Day: 1})
	f.predictor.insight = "Short walks could lift the afternoon slump."
	ctx := context.Background()
	require.NoError(t, f.store.PutGoal(ctx, f.user, goal.Goal{Goals: "Walk daily"}))

	out, err := f.svc.AnalyzeMood(ctx, f.user, &prediction.AnalyzeRequest{Note: "  tired after lunch "})
	require.NoError(t, err)
	assert.Equal(t, "Short walks could lift the afternoon slump.", out.Insight)
	assert.Equal(t, "tired after lunch", f.predictor.lastNote)
	assert.Equal(t, "Walk daily", f.predictor.lastGoals)

	_, err = f.svc.AnalyzeMood(ctx, f.user, &prediction.AnalyzeRequest{Note: "ok", Goals: "Sleep by 11"})
	require.NoError(t, err)
	assert.Equal(t, "Sleep by 11", f.predictor.lastGoals)
}

func TestAnalyzeMoodFailures(t *testing.T) {
	f := newAnalyticsFixture(t, civil.Date{Year: 2024, Month: 6, Day: 1})
	ctx := context.Background()

	_, err := f.svc.AnalyzeMood(ctx, f.user, &prediction.AnalyzeRequest{Note: "   "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 0, f.predictor.calls)

	f.predictor.err = errUpstream
	_, err = f.svc.AnalyzeMood(ctx, f.user, &prediction.AnalyzeRequest{Note: "anxious"})
	assert.ErrorIs(t, err, apperr.ErrPredictorFailure)
}
