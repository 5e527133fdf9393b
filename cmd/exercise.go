package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/satzbau/internal/history"
	"github.com/abhisek/satzbau/internal/ui/theme"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Generate, grade and discuss exercises",
}

var exerciseNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new exercise for the saved profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		gen, err := e.generator(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		prof, err := e.profiles().Load(ctx)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		ex, err := gen.GenerateExercise(ctx, prof.Learner())
		if err != nil {
			return err
		}
		if _, err := e.history().Upsert(ctx, *ex); err != nil {
			return fmt.Errorf("save exercise: %w", err)
		}

		renderExercise(cmd.OutOrStdout(), *ex)
		return nil
	},
}

var exerciseGradeCmd = &cobra.Command{
	Use:   "grade <exercise-id> <answer...>",
	Short: "Grade an answer to a saved exercise",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exerciseID, answer := args[0], strings.Join(args[1:], " ")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		hist := e.history()
		rec, err := hist.Get(ctx, exerciseID)
		if err != nil {
			return err
		}

		gen, err := e.generator(cmd)
		if err != nil {
			return err
		}
		res, err := gen.GradeSentence(ctx, rec.Exercise, answer)
		if err != nil {
			return err
		}

		attempt, err := hist.RecordAttempt(ctx, exerciseID, answer, *res)
		if err != nil {
			return err
		}
		if _, err := e.profiles().RecordOutcome(ctx, res.IsCorrect); err != nil {
			e.logger.Warn("update profile counters failed", "error", err)
		}

		out := cmd.OutOrStdout()
		renderGrading(out, *res)
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Saved as attempt #%d", attempt.AttemptID)))
		return nil
	},
}

var exerciseAskCmd = &cobra.Command{
	Use:   "ask <exercise-id> <question...>",
	Short: "Ask a follow-up question about a graded attempt",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exerciseID, question := args[0], strings.Join(args[1:], " ")
		attemptID, _ := cmd.Flags().GetInt("attempt")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		hist := e.history()
		rec, err := hist.Get(ctx, exerciseID)
		if err != nil {
			return err
		}
		attempt, err := pickAttempt(rec.Attempts, attemptID)
		if err != nil {
			return err
		}

		gen, err := e.generator(cmd)
		if err != nil {
			return err
		}
		answer, err := gen.AnswerFollowup(ctx, rec.Exercise, attempt.UserAnswer, attempt.Feedback, question)
		if err != nil {
			return err
		}

		thread := append(slices.Clone(attempt.QAHistory), history.QA{
			Question:  question,
			Answer:    answer,
			Timestamp: time.Now().UTC(),
		})
		if err := hist.AttachFollowupByID(ctx, exerciseID, attempt.AttemptID, thread); err != nil {
			return fmt.Errorf("save follow-up: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

// pickAttempt returns the attempt with the given id, or the latest one when
// id is zero.
func pickAttempt(attempts []history.Attempt, id int) (history.Attempt, error) {
	if len(attempts) == 0 {
		return history.Attempt{}, fmt.Errorf("no attempts yet; grade an answer first")
	}
	if id == 0 {
		return attempts[len(attempts)-1], nil
	}
	for _, a := range attempts {
		if a.AttemptID == id {
			return a, nil
		}
	}
	return history.Attempt{}, fmt.Errorf("attempt #%d not found", id)
}

func init() {
	exerciseAskCmd.Flags().Int("attempt", 0, "Attempt number to ask about (default: latest)")

	exerciseCmd.AddCommand(exerciseNewCmd)
	exerciseCmd.AddCommand(exerciseGradeCmd)
	exerciseCmd.AddCommand(exerciseAskCmd)
}
