// Package predictor asks a language model for a 7-day habit success estimate
// and for short insights on mood notes.
package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"golang.org/x/time/rate"

	"pillarsAPI/internal/apperr"
	"pillarsAPI/internal/types/prediction"
)

const systemPrompt = "You predict the 7-day completion likelihood for a single habit. " +
	"Calibrate probability using streaks and recent history. " +
	"Return JSON only that matches the provided schema."

const analyzeSystemPrompt = "You are a supportive wellbeing coach. " +
	"Given a mood note and the user's goals, reply with two or three sentences of practical insight. " +
	"Do not give medical advice."

// maxInsightTokens keeps mood insights short.
const maxInsightTokens = 300

// Predictor produces predictions and mood insights or fails with
// apperr.ErrPredictorFailure.
type Predictor interface {
	Predict(ctx context.Context, req prediction.Request) (*prediction.Prediction, error)
	AnalyzeMood(ctx context.Context, note, goals string) (string, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// RPS caps outbound calls across all requests.
	RPS float64
}

type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}

	return &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 3),
	}
}

func (o *OpenAI) Predict(ctx context.Context, req prediction.Request) (*prediction.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, apperr.Predictor(fmt.Errorf("rate limit wait: %w", err))
	}

	userPrompt, err := buildUserPrompt(req)
	if err != nil {
		return nil, apperr.Predictor(err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "HabitPrediction",
				Schema: predictionSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, apperr.Predictor(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Predictor(errors.New("no prediction returned"))
	}

	return parsePrediction(resp.Choices[0].Message.Content)
}

// AnalyzeMood returns a plain-text insight. Empty output counts as a failure.
func (o *OpenAI) AnalyzeMood(ctx context.Context, note, goals string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return "", apperr.Predictor(fmt.Errorf("rate limit wait: %w", err))
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxInsightTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnalyzePrompt(note, goals)},
		},
	})
	if err != nil {
		return "", apperr.Predictor(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Predictor(errors.New("no insight returned"))
	}

	insight := strings.TrimSpace(resp.Choices[0].Message.Content)
	if insight == "" {
		return "", apperr.Predictor(errors.New("empty insight"))
	}
	return insight, nil
}

func buildAnalyzePrompt(note, goals string) string {
	if goals == "" {
		goals = "(none set)"
	}
	return fmt.Sprintf("Mood note: %s\nGoals: %s", note, goals)
}

var predictionSchema = &jsonschema.Definition{
	Type:                 jsonschema.Object,
	AdditionalProperties: false,
	Properties: map[string]jsonschema.Definition{
		"successProbability": {Type: jsonschema.Integer, Description: "0 to 100"},
		"recommendation":     {Type: jsonschema.String},
		"riskFactors":        {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
		"rationale":          {Type: jsonschema.String},
	},
	Required: []string{"successProbability", "recommendation", "riskFactors", "rationale"},
}

func buildUserPrompt(req prediction.Request) (string, error) {
	features, err := json.Marshal(req.Features)
	if err != nil {
		return "", fmt.Errorf("encode features: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Habit: %s\n", req.HabitName)
	fmt.Fprintf(&b, "Current streak (days): %d\n", req.CurrentStreak)
	fmt.Fprintf(&b, "User reflection: %s\n", req.Reflection)
	fmt.Fprintf(&b, "Features: %s\n", features)
	b.WriteString("Goal: Probability of completing this habit over the next 7 days.\n")
	b.WriteString("Return JSON only.")
	return b.String(), nil
}

// parsePrediction treats empty, malformed or out-of-range output the same as a
// transport failure.
func parsePrediction(content string) (*prediction.Prediction, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Predictor(errors.New("empty response"))
	}

	var p prediction.Prediction
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, apperr.Predictor(fmt.Errorf("decode prediction: %w", err))
	}
	if err := p.Validate(); err != nil {
		return nil, apperr.Predictor(err)
	}
	return &p, nil
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Predict(context.Context, prediction.Request) (*prediction.Prediction, error) {
	return nil, apperr.Predictor(errors.New("predictor is not configured"))
}

func (Disabled) AnalyzeMood(context.Context, string, string) (string, error) {
	return "", apperr.Predictor(errors.New("predictor is not configured"))
}
