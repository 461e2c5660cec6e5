package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sergo9723/footbal-plan-bot/internal/alerting"
	"github.com/sergo9723/footbal-plan-bot/internal/config"
	"github.com/sergo9723/footbal-plan-bot/internal/provider"
	"github.com/sergo9723/footbal-plan-bot/internal/service"
	"github.com/sergo9723/footbal-plan-bot/internal/state"
	"github.com/sergo9723/footbal-plan-bot/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newProvider() provider.FixtureProvider {
	return provider.NewAPIFootball(provider.APIFootballOptions{
		BaseURL:           a.Config.Provider.BaseURL,
		APIKey:            a.Config.Provider.APIKey,
		Timezone:          a.Config.Provider.Timezone,
		Timeout:           a.Config.Provider.RequestTimeout,
		RequestsPerMinute: a.Config.Provider.RequestsPerMinute,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	cfg := a.Config.Telegram
	return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.RequestTimeout, a.Logger)
}

func (a *App) location() (*time.Location, error) {
	tz := a.Config.Provider.Timezone
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

// openResults connects the optional Postgres mirror; all three returns are
// nil when no DSN is configured.
func (a *App) openResults(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

// Run executes the long-running signal loop.
func (a *App) Run(ctx context.Context) error {
	if err := a.Config.RequireSecrets(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loc, err := a.location()
	if err != nil {
		return err
	}

	results, closeResults, err := a.openResults(ctx)
	if err != nil {
		return err
	}
	if results == nil {
		a.Logger.Debug().Msg("database.dsn not configured; results mirror disabled")
	}
	if closeResults != nil {
		defer closeResults()
	}

	var resultStore storage.ResultStore
	if results != nil {
		resultStore = results
	}

	svc := service.New(service.Config{
		MinMinute:          a.Config.Strategy.MinMinute,
		MaxMinute:          a.Config.Strategy.MaxMinute,
		MaxSignalsPerMatch: a.Config.Strategy.MaxSignalsPerMatch,
		MaxSignalsPerDay:   a.Config.Strategy.MaxSignalsPerDay,
		ActiveFrom:         a.Config.Strategy.ActiveFrom,
		ActiveTo:           a.Config.Strategy.ActiveTo,
		PollActive:         a.Config.Strategy.PollActive,
		SleepChunk:         a.Config.Strategy.SleepChunk,
	},
		a.newProvider(),
		a.newNotifier(),
		state.NewStore(a.Config.Files.StatePath()),
		state.NewLedger(a.Config.Files.LedgerPath()),
		resultStore,
		loc,
		a.Logger,
	)

	a.Logger.Info().Msg("starting signal loop")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("signal loop stopped")
	return nil
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ExportOptions hold parameters for exporting the result ledger.
type ExportOptions struct {
	From    *time.Time
	To      *time.Time
	PNGPath string
	CSVPath string
}
