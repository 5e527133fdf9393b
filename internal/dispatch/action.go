// Package dispatch decodes tagged requests into one of the supported
// actions and routes them to the generator.
package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/satzbau/internal/sentencegen"
)

// Action names accepted in the "action" field.
const (
	ActionGenerateExercise = "generateExercise"
	ActionGradeSentence    = "gradeSentence"
	ActionAnswerQuestion   = "answerQuestion"
)

// Action is one of GenerateExercise, GradeSentence or AnswerQuestion.
type Action interface {
	Name() string
	action()
}

// GenerateExercise asks for a new exercise for a learner.
type GenerateExercise struct {
	Profile sentencegen.LearnerProfile
}

// GradeSentence asks for a verdict on a learner's sentence.
type GradeSentence struct {
	Exercise sentencegen.Exercise
	Answer   string
}

// AnswerQuestion asks a follow-up question about earlier feedback.
type AnswerQuestion struct {
	Exercise sentencegen.Exercise
	Answer   string
	Feedback sentencegen.GradingResult
	Question string
}

func (GenerateExercise) Name() string { return ActionGenerateExercise }
func (GradeSentence) Name() string    { return ActionGradeSentence }
func (AnswerQuestion) Name() string   { return ActionAnswerQuestion }

func (GenerateExercise) action() {}
func (GradeSentence) action()    {}
func (AnswerQuestion) action()   {}

// ValidationError reports a malformed request or missing fields.
type ValidationError struct {
	Action string
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid request: %v", e.Err)
	}
	return fmt.Sprintf("%s is required for %s", strings.Join(e.Fields, ", "), e.Action)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InvalidActionError reports an unrecognized action.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action specified: %q", e.Action)
}

// envelope is the wire form of every request. Pointers mark presence.
type envelope struct {
	Action      string                      `json:"action"`
	UserProfile *sentencegen.LearnerProfile `json:"userProfile"`
	Exercise    *sentencegen.Exercise       `json:"exercise"`
	UserAnswer  *string                     `json:"userAnswer"`
	Feedback    *sentencegen.GradingResult  `json:"feedback"`
	Question    *string                     `json:"question"`
}

// Decode parses a request body into an Action, checking the fields the
// action needs before anything reaches the model.
func Decode(body []byte) (Action, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ValidationError{Err: fmt.Errorf("empty request body")}
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var missing []string
	need := func(present bool, field string) {
		if !present {
			missing = append(missing, field)
		}
	}

	switch env.Action {
	case ActionGenerateExercise:
		need(env.UserProfile != nil, "userProfile")
		if missing != nil {
			return nil, &ValidationError{Action: env.Action, Fields: missing}
		}
		return GenerateExercise{Profile: *env.UserProfile}, nil

	case ActionGradeSentence:
		need(env.Exercise != nil, "exercise")
		need(env.UserAnswer != nil, "userAnswer")
		if missing != nil {
			return nil, &ValidationError{Action: env.Action, Fields: missing}
		}
		return GradeSentence{Exercise: *env.Exercise, Answer: *env.UserAnswer}, nil

	case ActionAnswerQuestion:
		need(env.Exercise != nil, "exercise")
		need(env.UserAnswer != nil, "userAnswer")
		need(env.Feedback != nil, "feedback")
		need(env.Question != nil, "question")
		if missing != nil {
			return nil, &ValidationError{Action: env.Action, Fields: missing}
		}
		return AnswerQuestion{
			Exercise: *env.Exercise,
			Answer:   *env.UserAnswer,
			Feedback: *env.Feedback,
			Question: *env.Question,
		}, nil

	default:
		return nil, &InvalidActionError{Action: env.Action}
	}
}
