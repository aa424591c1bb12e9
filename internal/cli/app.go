package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"finassist/internal/amqp"
	"finassist/internal/auditlog"
	"finassist/internal/backend"
	"finassist/internal/config"
	applog "finassist/internal/log"
	"finassist/internal/receipt"
	"finassist/internal/report"
	"finassist/internal/services"
	"finassist/internal/tools"
)

// App is one assembled process: a backend and the services over it.
type App struct {
	Config   *config.Config
	Log      *applog.Logger
	Backend  *backend.Backend
	Services tools.Services
	Tools    *tools.Dispatcher
	Reports  *report.Exporter

	now     func() time.Time
	closers []func() error
}

// Parts are the collaborators NewApp does not build itself.
type Parts struct {
	Backend *backend.Backend
	// Events may be nil to disable ledger events.
	Events services.EventPublisher
	// Now and Random default to the wall clock and the process-wide generator.
	Now    func() time.Time
	Random services.RandomSource
}

// AppFactory builds the App for one command run.
type AppFactory func(ctx context.Context) (*App, error)

// NewApp assembles the services over parts.
func NewApp(cfg *config.Config, logger *applog.Logger, parts Parts) *App {
	now := parts.Now
	if now == nil {
		now = time.Now
	}
	deps := services.Deps{Store: parts.Backend.Store, Logger: logger, Now: now}
	grouping := cfg.Grouping()

	audit := auditlog.New(cfg.AuditLogPath, now)
	renderer := receipt.NewPDFRenderer(cfg.ReceiptsDir, receipt.Layout{
		Currency:  cfg.CurrencyLabel,
		Signatory: cfg.ReceiptSignatory,
	})

	svc := tools.Services{
		Users:     services.NewUserService(deps, cfg.BudgetPeriod),
		Spending:  services.NewSpendingAggregator(deps, grouping),
		Budgets:   services.NewBudgetEvaluator(deps, cfg.BudgetPeriod),
		Forecasts: services.NewForecaster(deps, grouping, parts.Random),
		Ledger: services.NewLedgerWriter(deps, audit, parts.Events, services.LedgerOptions{
			StrictReferentialCheck: cfg.StrictReferentialCheck,
		}),
		Receipts: services.NewReceiptGenerator(deps, renderer),
	}

	return &App{
		Config:   cfg,
		Log:      logger,
		Backend:  parts.Backend,
		Services: svc,
		Tools:    tools.NewDispatcher(svc, logger),
		Reports:  report.NewExporter(cfg.ReportsDir),
		now:      now,
		closers:  []func() error{parts.Backend.Cleanup},
	}
}

// Bootstrap opens the configured backend and, when an AMQP URL is set, the ledger
// event publisher. A broker that cannot be reached only disables events.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	b, err := backend.NewFactory(logger).Open(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	parts := Parts{Backend: b}
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without ledger events",
				applog.FieldError, err)
		} else {
			parts.Events = events
		}
	}

	app := NewApp(cfg, logger, parts)
	if parts.Events != nil {
		app.closers = append(app.closers, events.Close)
	}
	return app, nil
}

// DefaultAppFactory loads configuration from the environment for every run and logs to logOut.
func DefaultAppFactory(logOut io.Writer) AppFactory {
	return func(ctx context.Context) (*App, error) {
		cfg, err := LoadAndValidateConfig()
		if err != nil {
			return nil, err
		}
		return Bootstrap(ctx, cfg, SetupLogger(cfg, logOut))
	}
}

// Close releases everything the app opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
