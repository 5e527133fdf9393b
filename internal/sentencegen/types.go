package sentencegen

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LearnerProfile is the part of a learner's profile that shapes an exercise.
type LearnerProfile struct {
	ProficiencyLevel string   `json:"proficiencyLevel"`
	ProblemAreas     []string `json:"problemAreas"`
	FocusArea        *string  `json:"focusArea,omitempty"`
}

// FallbackFocus is the focus target used when a profile names no areas.
const FallbackFocus = "general grammar"

// FocusTarget resolves the single area an exercise should target: the
// focus area when set and non-blank, else the comma-joined problem areas,
// else FallbackFocus.
func FocusTarget(p LearnerProfile) string {
	if p.FocusArea != nil && strings.TrimSpace(*p.FocusArea) != "" {
		return strings.TrimSpace(*p.FocusArea)
	}
	if len(p.ProblemAreas) > 0 {
		return strings.Join(p.ProblemAreas, ", ")
	}
	return FallbackFocus
}

// Exercise is a generated sentence-writing prompt.
type Exercise struct {
	ExerciseID       string   `json:"exerciseId"`
	ProblemArea      string   `json:"problemArea"`
	ProficiencyLevel string   `json:"proficiencyLevel"`
	Topic            string   `json:"topic"`
	KeyWords         []string `json:"keyWords"`
	Instructions     string   `json:"instructions"`
	Context          string   `json:"context"`
	ExampleSentences []string `json:"exampleSentences,omitempty"`
}

// GrammarNote is one rule the learner should review, with an optional
// example sentence.
type GrammarNote struct {
	Rule    string  `json:"rule"`
	Example *string `json:"example,omitempty"`
}

// GradingResult is the verdict on one submitted sentence.
type GradingResult struct {
	IsCorrect    bool          `json:"isCorrect"`
	Score        float64       `json:"score"`
	Feedback     string        `json:"feedback"`
	Review       *string       `json:"review,omitempty"`
	GrammarNotes []GrammarNote `json:"grammarNotes,omitempty"`
}

// UnmarshalJSON accepts the older "suggestions" field as the detailed
// review when "review" is absent.
func (g *GradingResult) UnmarshalJSON(data []byte) error {
	type plain GradingResult
	var aux struct {
		plain
		Suggestions *string `json:"suggestions"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*g = GradingResult(aux.plain)
	if g.Review == nil && aux.Suggestions != nil {
		g.Review = aux.Suggestions
	}
	return nil
}

// Summary renders the result as a short plain-text block for prompts.
func (g GradingResult) Summary() string {
	var b strings.Builder
	if g.IsCorrect {
		b.WriteString("Verdict: correct\n")
	} else {
		b.WriteString("Verdict: incorrect\n")
	}
	b.WriteString("Score: ")
	b.WriteString(strconv.FormatFloat(g.Score, 'f', -1, 64))
	b.WriteString("\nFeedback: ")
	b.WriteString(g.Feedback)
	if g.Review != nil && *g.Review != "" {
		b.WriteString("\nReview: ")
		b.WriteString(*g.Review)
	}
	for _, n := range g.GrammarNotes {
		b.WriteString("\nGrammar note: ")
		b.WriteString(n.Rule)
		if n.Example != nil && *n.Example != "" {
			b.WriteString(" (e.g. ")
			b.WriteString(*n.Example)
			b.WriteString(")")
		}
	}
	return b.String()
}
