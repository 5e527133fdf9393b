package sentencegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/satzbau/internal/llm"
	"github.com/abhisek/satzbau/internal/logging"
	"github.com/abhisek/satzbau/internal/vocab"
)

// Inspiration supplies optional vocabulary for exercise prompts.
type Inspiration interface {
	Sample(n int) []vocab.Word
}

// Generator produces exercises, grades sentences and answers follow-up
// questions using an LLM provider. It holds no per-request state.
type Generator struct {
	provider llm.Provider
	words    Inspiration
	config   Config
	logger   *slog.Logger
	newID    func() string
}

// New creates a Generator. words may be nil to disable inspiration.
func New(provider llm.Provider, words Inspiration, cfg Config, logger *slog.Logger) *Generator {
	logger = logging.OrDefault(logger)
	return &Generator{
		provider: provider,
		words:    words,
		config:   cfg,
		logger:   logger,
		newID:    func() string { return "gen-" + uuid.NewString() },
	}
}

// exerciseOutput is the raw LLM response before validation.
type exerciseOutput struct {
	ProblemArea      string   `json:"problemArea"`
	ProficiencyLevel string   `json:"proficiencyLevel"`
	Topic            string   `json:"topic"`
	KeyWords         []string `json:"keyWords"`
	Instructions     string   `json:"instructions"`
	Context          string   `json:"context"`
	ExampleSentences []string `json:"exampleSentences"`
}

// GenerateExercise produces an exercise for the profile's focus target.
func (g *Generator) GenerateExercise(ctx context.Context, profile LearnerProfile) (*Exercise, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExercise)

	focus := FocusTarget(profile)
	var inspiration []vocab.Word
	if g.words != nil && g.config.InspirationWords > 0 {
		inspiration = g.words.Sample(g.config.InspirationWords)
	}

	req := llm.Request{
		System: exerciseSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExerciseMessage(profile, focus, inspiration)},
		},
		Schema:      ExerciseSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.ExerciseTemperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate exercise: %w", err)
	}

	var raw exerciseOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("generate exercise: %w", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}

	ex := &Exercise{
		ExerciseID:       g.newID(),
		ProblemArea:      focus,
		ProficiencyLevel: profile.ProficiencyLevel,
		Topic:            strings.TrimSpace(raw.Topic),
		KeyWords:         raw.KeyWords,
		Instructions:     strings.TrimSpace(raw.Instructions),
		Context:          strings.TrimSpace(raw.Context),
		ExampleSentences: raw.ExampleSentences,
	}
	if raw.ProblemArea != focus {
		g.logger.Debug("overriding model problem area", "model", raw.ProblemArea, "focus", focus)
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(ex); verr != nil {
			return nil, fmt.Errorf("generate exercise: %w", &llm.ErrInvalidResponse{Content: resp.Content, Err: verr})
		}
	}

	g.logger.Info("exercise generated", "exercise_id", ex.ExerciseID, "focus", focus, "topic", ex.Topic)
	return ex, nil
}

// gradingOutput is the raw LLM response before conversion.
type gradingOutput struct {
	IsCorrect    bool    `json:"isCorrect"`
	Score        float64 `json:"score"`
	Feedback     string  `json:"feedback"`
	Review       string  `json:"review"`
	GrammarNotes []struct {
		Rule    string `json:"rule"`
		Example string `json:"example"`
	} `json:"grammarNotes"`
}

// GradeSentence grades answer against the exercise.
func (g *Generator) GradeSentence(ctx context.Context, ex Exercise, answer string) (*GradingResult, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGrading)

	req := llm.Request{
		System: gradingSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildGradingMessage(ex, answer)},
		},
		Schema:      GradingSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.GradingTemperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("grade sentence: %w", err)
	}

	var raw gradingOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("grade sentence: %w", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}

	result := &GradingResult{
		IsCorrect: raw.IsCorrect,
		Score:     raw.Score,
		Feedback:  strings.TrimSpace(raw.Feedback),
	}
	if review := strings.TrimSpace(raw.Review); review != "" {
		result.Review = &review
	}
	for _, n := range raw.GrammarNotes {
		note := GrammarNote{Rule: strings.TrimSpace(n.Rule)}
		if example := strings.TrimSpace(n.Example); example != "" {
			note.Example = &example
		}
		result.GrammarNotes = append(result.GrammarNotes, note)
	}

	g.logger.Info("sentence graded", "exercise_id", ex.ExerciseID, "correct", result.IsCorrect, "score", result.Score)
	return result, nil
}

// AnswerFollowup answers a free-form question about earlier feedback.
func (g *Generator) AnswerFollowup(ctx context.Context, ex Exercise, answer string, feedback GradingResult, question string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeFollowup)

	req := llm.Request{
		System: followupSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFollowupMessage(ex, answer, feedback, question)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.FollowupTemperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("answer follow-up: %w", err)
	}

	text, err := resp.Text()
	if err != nil {
		return "", fmt.Errorf("answer follow-up: %w", &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("answer follow-up: %w", llm.ErrEmptyResponse)
	}
	return text, nil
}
