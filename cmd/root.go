package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/satzbau/internal/config"
	"github.com/abhisek/satzbau/internal/history"
	"github.com/abhisek/satzbau/internal/llm"
	"github.com/abhisek/satzbau/internal/logging"
	"github.com/abhisek/satzbau/internal/profile"
	"github.com/abhisek/satzbau/internal/sentencegen"
	"github.com/abhisek/satzbau/internal/store"
	"github.com/abhisek/satzbau/internal/vocab"
)

var rootCmd = &cobra.Command{
	Use:          "satzbau",
	Short:        "German sentence construction practice",
	Long:         "Satzbau generates German sentence-building exercises, grades answers and keeps a practice history.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SATZBAU_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides SATZBAU_LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SATZBAU_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func resolveLogLevel(cmd *cobra.Command, cfg config.Config) string {
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		return l
	}
	return cfg.LogLevel
}

// env bundles what the practice commands need: configuration, a logger and
// the open database.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
}

// openEnv loads configuration and opens the database. Callers must Close it.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg := config.Load()
	logger := logging.New(resolveLogLevel(cmd, cfg), os.Stderr)

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, store: s}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

func (e *env) history() *history.Store {
	return history.New(e.store.BlobRepo(), e.logger)
}

func (e *env) profiles() *profile.Store {
	return profile.New(e.store.BlobRepo(), e.logger)
}

// generator builds a Generator backed by the configured LLM provider.
func (e *env) generator(cmd *cobra.Command) (*sentencegen.Generator, error) {
	provider, err := llm.NewProviderFromEnv(cmd.Context(), e.store.EventRepo(), e.logger)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	words := vocab.NewSource(e.cfg.VocabPath, e.logger)
	return sentencegen.New(provider, words, sentencegen.DefaultConfig(), e.logger), nil
}
