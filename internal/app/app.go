package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"persuader/internal/config"
	"persuader/internal/infrastructure/llm"
	"persuader/internal/infrastructure/scheduler"
	"persuader/internal/infrastructure/storage"
	"persuader/internal/infrastructure/telemetry"
	"persuader/internal/logging"
	"persuader/internal/ports"
	"persuader/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	persuader  *usecase.Persuader
	supervisor *usecase.Supervisor
	recorder   *telemetry.Recorder
	closers    []io.Closer
}

// New connects the store and text service and builds the supervised worker.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{cfg: cfg, logger: baseLogger, recorder: telemetry.NewRecorder()}

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	completer, err := a.openCompleter(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	repository := storage.NewRepository(store, tableSchema(cfg))

	a.persuader = usecase.NewPersuader(usecase.PersuaderDeps{
		Repository: repository,
		Completer:  completer,
		Metrics:    a.recorder,
		Logger:     baseLogger.With("component", "persuader"),
		BatchSize:  cfg.Worker.BatchSize,
		Pause:      cfg.Worker.Pause,
	})

	a.supervisor = usecase.NewSupervisor(usecase.SupervisorDeps{
		Runner: a.persuader,
		Driver: scheduler.NewIntervalScheduler(cfg.Worker.Interval),
		Policy: usecase.RetryPolicy{
			MaxTries:     cfg.Retry.MaxTries,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			MaxElapsed:   cfg.Retry.MaxElapsed,
		},
		Metrics: a.recorder,
		Logger:  baseLogger.With("component", "supervisor"),
	})

	baseLogger.Info("services initialized",
		"store_driver", cfg.Store.Driver,
		"llm_provider", cfg.LLM.Provider,
		"interval", cfg.Worker.Interval)
	return a, nil
}

// Run blocks in the supervised loop until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.supervisor == nil {
		return fmt.Errorf("application is not initialized")
	}

	if addr := a.cfg.Metrics.Addr; addr != "" {
		go func() {
			a.logger.Info("metrics listener started", "addr", addr)
			if err := a.recorder.Serve(ctx, addr); err != nil {
				a.logger.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	return a.supervisor.Run(ctx)
}

// RunCycle executes a single cycle outside the loop, for external triggers.
func (a *Application) RunCycle(ctx context.Context) (usecase.CycleReport, error) {
	if a.persuader == nil {
		return usecase.CycleReport{}, fmt.Errorf("application is not initialized")
	}
	return a.persuader.RunCycle(ctx)
}

// Close releases store and text-service connections.
func (a *Application) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *Application) openStore(ctx context.Context) (ports.RecordStore, error) {
	cfg := a.cfg.Store

	switch cfg.Driver {
	case config.DriverREST:
		return storage.NewRESTStore(cfg.URL, cfg.Key, nil), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := storage.OpenSQL(cfg.Driver, cfg.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)

		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
		}

		store := storage.NewSQLStore(db, cfg.Driver)
		if cfg.EnsureSchema {
			if err := store.EnsureSchema(ctx, tableSchema(a.cfg)); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func (a *Application) openCompleter(ctx context.Context) (ports.TextCompleter, error) {
	cfg := a.cfg.LLM

	switch cfg.Provider {
	case config.ProviderGemini:
		completer, err := llm.NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, completer)
		return completer, nil
	case config.ProviderChatGPT:
		return llm.NewChatGPTCompleter(llm.ChatGPTConfig{
			Endpoint:     cfg.ChatGPT.Endpoint,
			Model:        cfg.ChatGPT.Model,
			APIKey:       cfg.ChatGPT.APIKey,
			SystemPrompt: cfg.ChatGPT.SystemPrompt,
		}, nil), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func tableSchema(cfg config.Config) storage.Schema {
	return storage.Schema{
		Campaigns:     cfg.Store.Tables.Campaigns,
		TalkingPoints: cfg.Store.Tables.TalkingPoints,
		Prospects:     cfg.Store.Tables.Prospects,
	}
}
