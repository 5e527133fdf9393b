package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/satzbau/internal/config"
	"github.com/abhisek/satzbau/internal/dispatch"
	"github.com/abhisek/satzbau/internal/llm"
	"github.com/abhisek/satzbau/internal/logging"
	"github.com/abhisek/satzbau/internal/sentencegen"
	"github.com/abhisek/satzbau/internal/server"
	"github.com/abhisek/satzbau/internal/store"
	"github.com/abhisek/satzbau/internal/vocab"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		logger := logging.NewJSON(resolveLogLevel(cmd, cfg), os.Stderr)

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DBPath = dbPath
		logger.Info("starting server", cfg.LogAttrs()...)

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if n, err := s.BlobRepo().PurgeExpired(ctx); err != nil {
			logger.Warn("purge expired blobs failed", "error", err)
		} else if n > 0 {
			logger.Info("purged expired blobs", "count", n)
		}

		provider, err := llm.NewProviderFromEnv(ctx, s.EventRepo(), logger)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		logger.Info("LLM provider ready", "model", provider.ModelID())

		gen := sentencegen.New(provider, vocab.NewSource(cfg.VocabPath, logger), sentencegen.DefaultConfig(), logger)
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           server.New(dispatch.New(gen, logger), logger).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SATZBAU_ADDR / PORT)")
}
