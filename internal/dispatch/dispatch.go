package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/satzbau/internal/logging"
	"github.com/abhisek/satzbau/internal/sentencegen"
)

// Generator is the subset of sentencegen.Generator the dispatcher uses.
type Generator interface {
	GenerateExercise(ctx context.Context, profile sentencegen.LearnerProfile) (*sentencegen.Exercise, error)
	GradeSentence(ctx context.Context, ex sentencegen.Exercise, answer string) (*sentencegen.GradingResult, error)
	AnswerFollowup(ctx context.Context, ex sentencegen.Exercise, answer string, feedback sentencegen.GradingResult, question string) (string, error)
}

// AnswerResponse is the result of an AnswerQuestion action.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// Failure is the single error shape returned to callers.
type Failure struct {
	Error string `json:"error"`
}

// Dispatcher routes actions to the generator. It is stateless and safe for
// concurrent use.
type Dispatcher struct {
	gen    Generator
	logger *slog.Logger
}

// New returns a Dispatcher over gen.
func New(gen Generator, logger *slog.Logger) *Dispatcher {
	logger = logging.OrDefault(logger)
	return &Dispatcher{gen: gen, logger: logger}
}

// Dispatch runs the action and returns *sentencegen.Exercise,
// *sentencegen.GradingResult or AnswerResponse.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (any, error) {
	switch a := a.(type) {
	case GenerateExercise:
		return d.gen.GenerateExercise(ctx, a.Profile)
	case GradeSentence:
		return d.gen.GradeSentence(ctx, a.Exercise, a.Answer)
	case AnswerQuestion:
		answer, err := d.gen.AnswerFollowup(ctx, a.Exercise, a.Answer, a.Feedback, a.Question)
		if err != nil {
			return nil, err
		}
		return AnswerResponse{Answer: answer}, nil
	default:
		return nil, fmt.Errorf("unhandled action %T", a)
	}
}

// Handle decodes and dispatches a raw request body. Every error is
// flattened into a Failure.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) (any, *Failure) {
	a, err := Decode(body)
	if err != nil {
		d.logger.Warn("rejected request", "error", err)
		return nil, &Failure{Error: err.Error()}
	}

	result, err := d.Dispatch(ctx, a)
	if err != nil {
		d.logger.Error("action failed", "action", a.Name(), "error", err)
		return nil, &Failure{Error: err.Error()}
	}
	return result, nil
}
