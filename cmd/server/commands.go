package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/config"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/platform/postgres"
	"github.com/phrazzld/bandpath/internal/scheduler"
	"github.com/phrazzld/bandpath/internal/service/auth"
	"github.com/spf13/cobra"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bandpath",
		Short:         "Adaptive learning path engine for writing band scores",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newEvaluateCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the daily evaluation schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion, postgres.MigrateReset},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.Database.URL == "" {
				return config.ErrMissingDatabaseURL
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the daily evaluation once for every active path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := time.Now().UTC()
			if asOf != "" {
				parsed, err := domain.ParseDay(asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", asOf)
				}
				day = parsed
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			app, err := newApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			daily := scheduler.NewDailyEvaluator(app.service, cfg.Scheduler.Concurrency, log)
			summary, err := daily.RunOnce(cmd.Context(), day)
			fmt.Fprintf(cmd.OutOrStdout(), "as_of=%s evaluated=%d adjusted=%d skipped=%d failed=%d\n",
				summary.AsOf.Format(domain.DateLayout),
				summary.Evaluated, summary.Adjusted, summary.Skipped, summary.Failed)
			return err
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluation day (YYYY-MM-DD, default today in UTC)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid --user %q: %w", userID, err)
				}
				id = parsed
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			token, err := jwtService.GenerateToken(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user_id=%s\n%s\n", id, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID to embed (default: a new random ID)")
	return cmd
}
