package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/satzbau/internal/llm"
	"github.com/abhisek/satzbau/internal/sentencegen"
)

const exerciseJSON = `{
	"problemArea": "cases",
	"proficiencyLevel": "A2",
	"topic": "Park",
	"keyWords": ["der Spaziergang"],
	"instructions": "Write about a walk.",
	"context": "Sunday afternoon.",
	"exampleSentences": ["Ich gehe in den Park.", "Die Sonne scheint."]
}`

const gradingJSON = `{
	"isCorrect": true,
	"score": 1.0,
	"feedback": "Correct",
	"review": "Well done.",
	"grammarNotes": []
}`

func newTestDispatcher(responses ...llm.MockResponse) (*Dispatcher, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	gen := sentencegen.New(mock, nil, sentencegen.DefaultConfig(), nil)
	return New(gen, nil), mock
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantAction  string
		wantFields  []string
		wantInvalid bool
	}{
		{
			name:       "generate",
			body:       `{"action":"generateExercise","userProfile":{"proficiencyLevel":"A2","problemAreas":["cases"]}}`,
			wantAction: ActionGenerateExercise,
		},
		{
			name:       "generate missing profile",
			body:       `{"action":"generateExercise"}`,
			wantFields: []string{"userProfile"},
		},
		{
			name:       "grade",
			body:       `{"action":"gradeSentence","exercise":{"exerciseId":"e"},"userAnswer":""}`,
			wantAction: ActionGradeSentence,
		},
		{
			name:       "grade missing both",
			body:       `{"action":"gradeSentence"}`,
			wantFields: []string{"exercise", "userAnswer"},
		},
		{
			name:       "answer",
			body:       `{"action":"answerQuestion","exercise":{},"userAnswer":"a","feedback":{"isCorrect":false,"score":0,"feedback":"f"},"question":"q"}`,
			wantAction: ActionAnswerQuestion,
		},
		{
			name:       "answer missing feedback and question",
			body:       `{"action":"answerQuestion","exercise":{},"userAnswer":"a"}`,
			wantFields: []string{"feedback", "question"},
		},
		{
			name:        "unknown action",
			body:        `{"action":"translate"}`,
			wantInvalid: true,
		},
		{
			name:        "missing action",
			body:        `{}`,
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode([]byte(tt.body))
			switch {
			case tt.wantInvalid:
				var inv *InvalidActionError
				if !errors.As(err, &inv) {
					t.Fatalf("expected InvalidActionError, got %v", err)
				}
			case tt.wantFields != nil:
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if strings.Join(verr.Fields, ",") != strings.Join(tt.wantFields, ",") {
					t.Fatalf("fields = %v, want %v", verr.Fields, tt.wantFields)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if a.Name() != tt.wantAction {
					t.Fatalf("action = %q, want %q", a.Name(), tt.wantAction)
				}
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, body := range []string{"", "   ", "{not json"} {
		_, err := Decode([]byte(body))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("body %q: expected ValidationError, got %v", body, err)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Action: ActionGradeSentence, Fields: []string{"exercise", "userAnswer"}}
	if err.Error() != "exercise, userAnswer is required for gradeSentence" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestHandle_GenerateExercise(t *testing.T) {
	d, _ := newTestDispatcher(llm.MockResponse{Content: json.RawMessage(exerciseJSON)})

	res, fail := d.Handle(context.Background(),
		[]byte(`{"action":"generateExercise","userProfile":{"proficiencyLevel":"A2","problemAreas":["cases"]}}`))
	if fail != nil {
		t.Fatalf("unexpected failure: %s", fail.Error)
	}
	ex, ok := res.(*sentencegen.Exercise)
	if !ok {
		t.Fatalf("expected *Exercise, got %T", res)
	}
	if ex.ProblemArea != "cases" || !strings.HasPrefix(ex.ExerciseID, "gen-") {
		t.Fatalf("unexpected exercise: %+v", ex)
	}
}

func TestHandle_GradeSentence(t *testing.T) {
	d, _ := newTestDispatcher(llm.MockResponse{Content: json.RawMessage(gradingJSON)})

	res, fail := d.Handle(context.Background(),
		[]byte(`{"action":"gradeSentence","exercise":{"exerciseId":"e","topic":"Park"},"userAnswer":"Ich sehe den Mann"}`))
	if fail != nil {
		t.Fatalf("unexpected failure: %s", fail.Error)
	}
	g, ok := res.(*sentencegen.GradingResult)
	if !ok || !g.IsCorrect {
		t.Fatalf("unexpected result %T %+v", res, res)
	}
}

func TestHandle_AnswerQuestion(t *testing.T) {
	d, _ := newTestDispatcher(llm.MockResponse{Text: "Weil 'sehen' den Akkusativ verlangt."})

	res, fail := d.Handle(context.Background(), []byte(`{
		"action":"answerQuestion",
		"exercise":{"exerciseId":"e"},
		"userAnswer":"Ich sehe der Mann",
		"feedback":{"isCorrect":false,"score":0.3,"feedback":"Wrong case"},
		"question":"Warum den?"
	}`))
	if fail != nil {
		t.Fatalf("unexpected failure: %s", fail.Error)
	}
	ans, ok := res.(AnswerResponse)
	if !ok || ans.Answer != "Weil 'sehen' den Akkusativ verlangt." {
		t.Fatalf("unexpected result %T %+v", res, res)
	}
}

func TestHandle_ValidationSkipsModel(t *testing.T) {
	d, mock := newTestDispatcher()

	_, fail := d.Handle(context.Background(), []byte(`{"action":"gradeSentence","exercise":{}}`))
	if fail == nil || !strings.Contains(fail.Error, "userAnswer") {
		t.Fatalf("expected failure naming userAnswer, got %+v", fail)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("model must not be called, got %d calls", mock.CallCount())
	}
}

func TestHandle_FlattensGeneratorErrors(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
		want string
	}{
		{"refused", llm.MockResponse{Err: &llm.ErrRefused{Reason: "policy"}}, "refused"},
		{"upstream", llm.MockResponse{Err: &llm.ErrProviderUnavailable{StatusCode: 503}}, "status 503"},
		{"schema", llm.MockResponse{Content: json.RawMessage(`{}`)}, "invalid LLM response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDispatcher(tt.resp)
			res, fail := d.Handle(context.Background(), []byte(`{"action":"generateExercise","userProfile":{"proficiencyLevel":"A1","problemAreas":[]}}`))
			if res != nil {
				t.Fatalf("expected no result, got %+v", res)
			}
			if fail == nil || !strings.Contains(fail.Error, tt.want) {
				t.Fatalf("expected failure containing %q, got %+v", tt.want, fail)
			}
		})
	}
}

func TestHandle_InvalidAction(t *testing.T) {
	d, _ := newTestDispatcher()
	_, fail := d.Handle(context.Background(), []byte(`{"action":"translate"}`))
	if fail == nil || !strings.Contains(fail.Error, "invalid action") {
		t.Fatalf("unexpected failure %+v", fail)
	}
}
