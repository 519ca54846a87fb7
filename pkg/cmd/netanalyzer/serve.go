package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/network-analysis-service/pkg/api"
	"github.com/gilchrisn/network-analysis-service/pkg/config"
	"github.com/gilchrisn/network-analysis-service/pkg/service"
	"github.com/gilchrisn/network-analysis-service/pkg/store"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), c.cfg)
		},
	}
}

// openKV opens the configured account store.
func openKV(cfg *config.Config) (store.KV, error) {
	switch cfg.UserStore() {
	case "memory":
		return store.NewMemoryKV(), nil
	case "badger":
		kv, err := store.NewBadgerKV(cfg.BadgerPath())
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown user store %q", cfg.UserStore())
	}
}

// buildServer wires stores, services and routes into an http.Server. The
// returned KV must be closed by the caller.
func buildServer(cfg *config.Config) (*http.Server, store.KV, error) {
	kv, err := openKV(cfg)
	if err != nil {
		return nil, nil, err
	}

	metrics := api.NewMetrics("netanalyzer")

	authService := service.NewAuthService(store.NewUserStore(kv), cfg.AuthSecret(), cfg.SessionTTL(), cfg.ResetTokenTTL())
	if cfg.SeedDemoUser() {
		if err := authService.SeedDemoUser(); err != nil {
			kv.Close()
			return nil, nil, fmt.Errorf("failed to seed demo user: %w", err)
		}
	}

	analysisService := service.NewAnalysisService(
		cfg.UploadDir(),
		cfg.SampleDir(),
		cfg.MaxWorkers(),
		analysisOptions(cfg),
		metrics,
	)

	log.Info().
		Str("store", cfg.UserStore()).
		Int("max_workers", analysisService.MaxWorkers()).
		Bool("require_auth", cfg.RequireAuthForAnalysis()).
		Msg("Services initialized")

	handlers := api.NewHandlers(analysisService, authService, metrics, cfg.MaxUploadBytes())
	router := api.NewRouter(handlers, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		RequireAuth:    cfg.RequireAuthForAnalysis(),
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
	return server, kv, nil
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.AuthSecret() == "change-me" {
		log.Warn().Msg("Using the default session secret; set NETANALYZER_AUTH_SECRET")
	}

	server, kv, err := buildServer(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", server.Addr).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
