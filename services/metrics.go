package services

import "github.com/prometheus/client_golang/prometheus"

var (
	friendshipTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_transitions_total",
			Help: "Friendship operations by action and outcome",
		},
		[]string{"action", "result"},
	)
	habitCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completions_total",
			Help: "Completion events received, split into recorded and duplicate",
		},
		[]string{"result"},
	)
	predictorOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_requests_total",
			Help: "Predictor calls by outcome",
		},
		[]string{"source", "outcome"},
	)
)

// InitPrometheus registers the service metrics. Call this from main.go
func InitPrometheus() {
	prometheus.MustRegister(friendshipTransitions)
	prometheus.MustRegister(habitCompletions)
	prometheus.MustRegister(predictorOutcomes)
}
