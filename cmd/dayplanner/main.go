package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexanderramin/dayplanner/internal/cli"
	"github.com/alexanderramin/dayplanner/internal/config"
	"github.com/alexanderramin/dayplanner/internal/db"
	"github.com/alexanderramin/dayplanner/internal/intelligence"
	"github.com/alexanderramin/dayplanner/internal/kvstore"
	"github.com/alexanderramin/dayplanner/internal/llm"
	"github.com/alexanderramin/dayplanner/internal/logging"
	"github.com/alexanderramin/dayplanner/internal/notify"
	"github.com/alexanderramin/dayplanner/internal/repository"
	"github.com/alexanderramin/dayplanner/internal/service"
	"github.com/alexanderramin/dayplanner/internal/share"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Prefix: "dayplanner",
	})
	slog.SetDefault(logger)
	if cfg.Source != "" {
		logger.Debug("config loaded", "path", cfg.Source)
	}

	app := &cli.App{
		SyncInterval: cfg.Reminder.SyncInterval(),
		Clipboard:    share.NewClipboardSharer(),
	}

	// Detect interactive terminal for prompts, spinners and the day view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Reminders = notify.NewCronScheduler(time.Local,
		cli.NewReminderNotifier(func() *service.Planner { return app.Planner }, os.Stdout, logger),
		logger)

	// The bot is authenticated on first share so other commands stay offline.
	if cfg.Telegram.Enabled() {
		app.Telegram = share.SharerFunc(func(ctx context.Context, text string) error {
			tg, err := share.NewTelegramSharer(cfg.Telegram.Token, cfg.Telegram.ChatID)
			if err != nil {
				return err
			}
			return tg.Share(ctx, text)
		})
	}

	// Wire intelligence services (only when LLM is enabled)
	var extractor intelligence.TaskExtractor
	if cfg.LLM.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(logger)
		}
		client := llm.NewClient(cfg.LLM, observer)
		extractor = intelligence.NewTaskExtractor(client)
		app.Corrector = intelligence.NewTranscriptCorrector(client)
	}

	var closeStore func() error
	app.Connect = func(ctx context.Context, useMemory bool) (*service.Planner, error) {
		backend := cfg.Store
		if useMemory {
			backend = config.StoreMemory
		}
		store, closer, err := openStore(backend, cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		closeStore = closer
		logger.Debug("store opened", "backend", backend, "path", cfg.DBPath)

		repo := repository.NewKVPlanRepo(store, repository.Options{Strict: cfg.Strict, Logger: logger})
		return service.NewPlanner(repo, service.PlannerDeps{
			Reminders: app.Reminders,
			Tasks:     extractor,
			Logger:    logger,
		}, service.NewLogUseCaseObserver(logger)), nil
	}

	defer func() {
		if app.Planner != nil {
			_ = app.Planner.Close()
		}
		if closeStore != nil {
			if err := closeStore(); err != nil {
				logger.Warn("closing store", "error", err)
			}
		}
	}()

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(context.Background())
}

// openStore opens the configured key-value backend and returns a func
// that releases it.
func openStore(backend, path string, logger *slog.Logger) (kvstore.Store, func() error, error) {
	switch backend {
	case config.StoreMemory:
		return kvstore.NewMemoryStore(), func() error { return nil }, nil
	case config.StoreGorm:
		gdb, err := kvstore.NewGormDB(path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return kvstore.NewGormStore(gdb), sqlDB.Close, nil
	default:
		database, err := db.OpenDB(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return kvstore.NewSQLiteStore(database, db.NewSQLiteUnitOfWork(database)), database.Close, nil
	}
}
