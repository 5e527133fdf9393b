package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/satzbau/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change the learner profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved learner profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.profiles().Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		renderProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update level, problem areas or focus",
	Example: `  satzbau profile set --level B1
  satzbau profile set --areas word-order,dative-case --focus dative-case
  satzbau profile set --focus ""`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.profiles().Update(cmd.Context(), patch)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		renderProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved profile and start from the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ps := e.profiles()
		if err := ps.Reset(cmd.Context()); err != nil {
			return err
		}
		p, err := ps.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		renderProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

// patchFromFlags builds a profile patch from the flags that were set.
func patchFromFlags(cmd *cobra.Command) (profile.Patch, error) {
	var patch profile.Patch
	flags := cmd.Flags()

	if flags.Changed("level") {
		level, _ := flags.GetString("level")
		level = strings.ToUpper(strings.TrimSpace(level))
		if level == "" {
			return patch, fmt.Errorf("--level must not be empty")
		}
		patch.ProficiencyLevel = &level
	}
	if flags.Changed("areas") {
		raw, _ := flags.GetStringSlice("areas")
		areas := make([]string, 0, len(raw))
		for _, a := range raw {
			if a = strings.TrimSpace(a); a != "" {
				areas = append(areas, a)
			}
		}
		patch.ProblemAreas = &areas
	}
	if flags.Changed("focus") {
		focus, _ := flags.GetString("focus")
		patch.FocusArea = &focus
	}
	if patch == (profile.Patch{}) {
		return patch, fmt.Errorf("nothing to update; pass --level, --areas or --focus")
	}
	return patch, nil
}

func init() {
	profileSetCmd.Flags().String("level", "", "Proficiency level (A1..C2)")
	profileSetCmd.Flags().StringSlice("areas", nil, "Comma-separated problem areas")
	profileSetCmd.Flags().String("focus", "", "Grammar area to focus on (empty clears it)")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileResetCmd)
}
