package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/config"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/handler"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/metrics"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/repository/sqlite"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/repository/sqlite/migrations"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library book and lending records over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default ./config.yaml if present)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and print their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), configPath, cmd)
		},
	})
	return root
}

// setup loads the configuration and installs the default logger.
func setup(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)
	return cfg, nil
}

func runMigrate(ctx context.Context, configPath string, cmd *cobra.Command) error {
	cfg, err := setup(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	status, err := migrations.Status(ctx, db.SqlDB)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, m := range status {
		state := "pending"
		if m.Applied {
			state = "applied"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", state, m.Filename)
	}
	return nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := setup(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	userService := service.NewUserService(db.Users())
	bookService := service.NewBookService(db.Books(), db.Users())
	lendingService := service.NewLendingService(userService, bookService, m)

	deps := handler.Deps{
		Books:   bookService,
		Users:   userService,
		Lending: lendingService,
		DB:      db,
		Metrics: m.Handler(),
	}
	if cfg.RateLimit.Enabled() {
		deps.Limiter = service.NewTokenBucket(ctx, cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Wrap(mux, m),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
