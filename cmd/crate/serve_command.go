package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/crate/internal/api"
	"github.com/sydlexius/crate/internal/api/middleware"
	"github.com/sydlexius/crate/internal/version"
)

type connectionTester interface {
	TestConnection(ctx context.Context) error
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var askPassword bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, askPassword)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), ctx, password)
		},
	}
	cmd.Flags().BoolVar(&askPassword, "ask-password", false, "Prompt for the SSH password")
	return cmd
}

func runServer(parent context.Context, cc *commandContext, sshPassword string) error {
	a, err := cc.newApp("")
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger
	cfg := a.cfg

	logger.Info("crate starting",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("logging", cfg.Logging.String()))

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if tc, ok := a.catalog.(connectionTester); ok {
		if err := tc.TestConnection(ctx); err != nil {
			logger.Warn("media server not reachable at startup", slog.String("error", err.Error()))
		}
	}

	if cfg.SSH.Configured() {
		if err := cc.connectRemote(ctx, a, sshPassword); err != nil {
			logger.Warn("remote playlist files disabled", slog.String("error", err.Error()))
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(ctx, cfg.Server.RateLimit)
	}

	router := api.NewRouter(api.RouterDeps{
		Cleanup:     a.cleanup,
		Sessions:    a.sessions,
		Audit:       a.audit,
		LogManager:  a.logs,
		RateLimiter: limiter,
		Logger:      logger,
		BasePath:    cfg.Server.BasePath,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Expired scan sessions
	go a.sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
