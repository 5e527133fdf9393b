package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/satzbau/internal/history"
	"github.com/abhisek/satzbau/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past exercises and attempts",
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List exercises by most recent attempt",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory(cmd, (*history.Store).ListRecent)
	},
}

var historyIncompleteCmd = &cobra.Command{
	Use:   "incomplete",
	Short: "List exercises without a correct answer yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory(cmd, (*history.Store).ListIncomplete)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <exercise-id>",
	Short: "Show an exercise with all attempts and follow-ups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rec, err := e.history().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renderRecord(cmd.OutOrStdout(), *rec)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all exercises and attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.history().Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

type listFunc func(*history.Store, context.Context, int) ([]history.Record, error)

func listHistory(cmd *cobra.Command, list listFunc) error {
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	records, err := list(e.history(), cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No exercises found.")
		return nil
	}

	fmt.Fprintln(out, theme.Label.Render(fmt.Sprintf("%-42s  %-4s  %-16s  %-8s  %3s  %s",
		"Exercise", "Lvl", "Grammar", "Status", "Att", "Last attempt")))
	fmt.Fprintln(out, strings.Repeat("─", 100))
	for _, rec := range records {
		renderRecordRow(out, rec)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{historyRecentCmd, historyIncompleteCmd} {
		c.Flags().IntP("limit", "n", 10, "Number of exercises to show (0 for all)")
	}

	historyCmd.AddCommand(historyRecentCmd)
	historyCmd.AddCommand(historyIncompleteCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyClearCmd.Flags().Bool("yes", false, "Confirm deleting the whole history")
	historyCmd.AddCommand(historyClearCmd)
}
