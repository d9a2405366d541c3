package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bandpath/internal/catalog"
	"github.com/phrazzld/bandpath/internal/config"
	"github.com/phrazzld/bandpath/internal/grading"
	"github.com/phrazzld/bandpath/internal/platform/gemini"
	"github.com/phrazzld/bandpath/internal/platform/memory"
	"github.com/phrazzld/bandpath/internal/platform/postgres"
	"github.com/phrazzld/bandpath/internal/scheduler"
	"github.com/phrazzld/bandpath/internal/service/auth"
	"github.com/phrazzld/bandpath/internal/service/learningpath"
	"github.com/phrazzld/bandpath/internal/store"
)

// application holds the wired dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	pathStore  store.PathStore
	topics     catalog.Catalog
	grader     grading.Grader
	service    learningpath.Service
	jwtService auth.JWTService
	scheduler  *scheduler.Scheduler
}

// newApplication wires stores and services from cfg. The scheduler is
// created but not started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	if err := app.setupStore(ctx); err != nil {
		return nil, err
	}

	if cfg.Store.CatalogPath != "" {
		app.topics, err = catalog.LoadFile(cfg.Store.CatalogPath)
	} else {
		app.topics, err = catalog.Default()
	}
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to load topic catalog: %w", err)
	}

	if cfg.Grading.Enabled {
		g, err := gemini.NewGrader(ctx, logger, cfg.Grading)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize essay grader: %w", err)
		}
		app.grader = g
		logger.Info("essay grading enabled", slog.String("model", cfg.Grading.Model))
	} else {
		logger.Info("essay grading disabled")
	}

	app.service = learningpath.NewService(app.pathStore, app.topics, app.grader, cfg.Engine, logger)

	if cfg.Scheduler.Enabled {
		daily := scheduler.NewDailyEvaluator(app.service, cfg.Scheduler.Concurrency, logger)
		app.scheduler, err = scheduler.New(daily, cfg.Scheduler, logger)
		if err != nil {
			app.cleanup()
			return nil, err
		}
	}

	logger.Info("application initialized",
		slog.String("store", cfg.Store.Driver),
		slog.Bool("scheduler", cfg.Scheduler.Enabled))
	return app, nil
}

func (app *application) setupStore(ctx context.Context) error {
	switch app.config.Store.Driver {
	case config.DriverMemory:
		app.pathStore = memory.NewPathStore(app.logger)
		app.logger.Warn("using in-memory store; data is lost on exit")
		return nil

	case config.DriverPostgres:
		db, err := setupAppDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if app.config.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, postgres.MigrateUp, app.logger); err != nil {
				app.cleanup()
				return err
			}
		}
		app.pathStore = postgres.NewPostgresPathStore(db, app.logger)
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", app.config.Store.Driver)
	}
}

// Run serves HTTP until ctx is done, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	if app.scheduler != nil {
		app.scheduler.Start()
	}
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources. It is safe to call on a partly built app.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}
	app.logger.Info("application shutdown completed")
}
