package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/photocredit"
	"github.com/eringen/photocredit/views"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.AdminPassword == "" || cfg.SessionSecret == "" {
		return errors.New("PHOTOCREDIT_ADMIN_PASSWORD and PHOTOCREDIT_SESSION_SECRET must be set")
	}
	app := photocredit.New(cfg, views.New(cfg), photocredit.WithLogger(logger))
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return err
	}
	return <-errc
}
