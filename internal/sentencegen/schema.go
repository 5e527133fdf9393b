package sentencegen

import "github.com/abhisek/satzbau/internal/llm"

// ExerciseSchema pins the shape of a generated exercise. The exercise id
// is assigned locally and is not part of the model output.
var ExerciseSchema = &llm.Schema{
	Name:        "sentence-exercise",
	Description: "A German sentence-writing exercise targeting one grammar area",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problemArea": map[string]any{
				"type":        "string",
				"description": "The grammar area the exercise targets, copied from the request",
			},
			"proficiencyLevel": map[string]any{
				"type":        "string",
				"description": "The learner's CEFR level, copied from the request",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "Short everyday topic for the sentence, e.g. 'Bahnreise'",
			},
			"keyWords": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
				"maxItems":    2,
				"description": "One or two less common German words the learner must use",
			},
			"instructions": map[string]any{
				"type":        "string",
				"description": "What the learner should write, in English",
			},
			"context": map[string]any{
				"type":        "string",
				"description": "A short situation that frames the sentence",
			},
			"exampleSentences": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    2,
				"maxItems":    2,
				"description": "Two illustrative German sentences on the topic that do not use the key words",
			},
		},
		"required":             []any{"problemArea", "proficiencyLevel", "topic", "keyWords", "instructions", "context", "exampleSentences"},
		"additionalProperties": false,
	},
}

// GradingSchema pins the shape of a grading verdict.
var GradingSchema = &llm.Schema{
	Name:        "sentence-grading",
	Description: "Assessment of one German sentence written by a learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type":        "boolean",
				"description": "False when the sentence has any core grammar error",
			},
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Overall quality from 0.0 to 1.0",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences of feedback for the learner",
			},
			"review": map[string]any{
				"type":        "string",
				"description": "Detailed explanation of what, if anything, is wrong and how to fix it",
			},
			"grammarNotes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"rule": map[string]any{
							"type":        "string",
							"description": "The grammar rule involved",
						},
						"example": map[string]any{
							"type":        "string",
							"description": "A corrected example sentence, or an empty string",
						},
					},
					"required":             []any{"rule", "example"},
					"additionalProperties": false,
				},
				"description": "Grammar rules worth reviewing. Empty when the sentence is correct.",
			},
		},
		"required":             []any{"isCorrect", "score", "feedback", "review", "grammarNotes"},
		"additionalProperties": false,
	},
}
