package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/sudo-init-do/userhub/internal/alerts"
	"github.com/sudo-init-do/userhub/internal/auth"
	"github.com/sudo-init-do/userhub/internal/db"
	"github.com/sudo-init-do/userhub/internal/logging"
	"github.com/sudo-init-do/userhub/internal/metrics"
	"github.com/sudo-init-do/userhub/internal/server"
	"github.com/sudo-init-do/userhub/internal/user"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, nil)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	mailer, err := alerts.New(cfg.Mail, logger)
	if err != nil {
		return err
	}

	e, err := server.New(server.Deps{
		Config:  cfg,
		Logger:  logger,
		Users:   user.NewPostgresRepository(pool),
		Resets:  auth.NewPostgresResetRepository(pool),
		Mailer:  mailer,
		Metrics: metrics.New(),
		DB:      pool,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "mail_provider", cfg.Mail.Provider)
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.With("addr", cfg.Server.Addr).Wrapf(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return oops.Wrapf(err, "shutdown")
	}
	return nil
}
