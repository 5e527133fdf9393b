package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/satzbau/internal/history"
	"github.com/abhisek/satzbau/internal/profile"
	"github.com/abhisek/satzbau/internal/sentencegen"
	"github.com/abhisek/satzbau/internal/ui/theme"
)

const timeLayout = "2006-01-02 15:04:05"

func renderExercise(w io.Writer, ex sentencegen.Exercise) {
	keywords := make([]string, len(ex.KeyWords))
	for i, k := range ex.KeyWords {
		keywords[i] = theme.Keyword.Render(k)
	}

	var b strings.Builder
	fmt.Fprintln(&b, theme.Title.Render(ex.Topic))
	fmt.Fprintln(&b, theme.Field("ID", ex.ExerciseID))
	fmt.Fprintln(&b, theme.Field("Level", ex.ProficiencyLevel))
	fmt.Fprintln(&b, theme.Field("Grammar", ex.ProblemArea))
	fmt.Fprintln(&b, theme.Field("Key words", strings.Join(keywords, ", ")))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, ex.Context)
	fmt.Fprintln(&b)
	fmt.Fprint(&b, ex.Instructions)
	if len(ex.ExampleSentences) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b)
		fmt.Fprint(&b, theme.Label.Render("Examples"))
		for _, s := range ex.ExampleSentences {
			fmt.Fprintf(&b, "\n  • %s", s)
		}
	}

	fmt.Fprintln(w, theme.Card.Render(b.String()))
}

func renderGrading(w io.Writer, res sentencegen.GradingResult) {
	fmt.Fprintf(w, "%s  %s\n", theme.Verdict(res.IsCorrect), theme.Hint.Render(fmt.Sprintf("score %.2f", res.Score)))
	fmt.Fprintln(w, res.Feedback)
	if res.Review != nil && *res.Review != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Label.Render("Review"))
		fmt.Fprintln(w, *res.Review)
	}
	if len(res.GrammarNotes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Label.Render("Grammar notes"))
		for _, n := range res.GrammarNotes {
			fmt.Fprintf(w, "  • %s\n", n.Rule)
			if n.Example != nil && *n.Example != "" {
				fmt.Fprintf(w, "    %s\n", theme.Hint.Render(*n.Example))
			}
		}
	}
}

func renderRecordRow(w io.Writer, rec history.Record) {
	status := theme.Hint.Render("open")
	if rec.IsComplete {
		status = theme.Correct.Render("done")
	}
	last := "-"
	if t := rec.LastAttemptAt(); !t.IsZero() {
		last = t.Local().Format(timeLayout)
	}
	fmt.Fprintf(w, "%-42s  %-4s  %-16s  %-8s  %3d  %s\n",
		truncate(rec.Exercise.ExerciseID, 42),
		rec.Exercise.ProficiencyLevel,
		truncate(rec.Exercise.ProblemArea, 16),
		status,
		len(rec.Attempts),
		last,
	)
}

func renderRecord(w io.Writer, rec history.Record) {
	renderExercise(w, rec.Exercise)
	if len(rec.Attempts) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No attempts yet."))
		return
	}
	for _, a := range rec.Attempts {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Rule(60))
		fmt.Fprintf(w, "%s  %s\n",
			theme.Title.Render(fmt.Sprintf("Attempt #%d", a.AttemptID)),
			theme.Hint.Render(a.Timestamp.Local().Format(timeLayout)))
		fmt.Fprintln(w, theme.Field("Answer", a.UserAnswer))
		renderGrading(w, a.Feedback)
		for _, qa := range a.QAHistory {
			fmt.Fprintln(w)
			fmt.Fprintln(w, theme.Field("Q", qa.Question))
			fmt.Fprintln(w, theme.Field("A", qa.Answer))
		}
	}
}

func renderProfile(w io.Writer, p profile.Profile) {
	focus := theme.Hint.Render("(none)")
	if p.FocusArea != nil {
		focus = *p.FocusArea
	}
	areas := strings.Join(p.ProblemAreas, ", ")
	if areas == "" {
		areas = theme.Hint.Render("(none)")
	}
	fmt.Fprintln(w, theme.Field("Level", p.ProficiencyLevel))
	fmt.Fprintln(w, theme.Field("Problem areas", areas))
	fmt.Fprintln(w, theme.Field("Focus", focus))
	fmt.Fprintln(w, theme.Field("Completed", fmt.Sprintf("%d", p.ExercisesCompleted)))
	fmt.Fprintln(w, theme.Field("Correct", fmt.Sprintf("%d", p.CorrectAnswers)))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
