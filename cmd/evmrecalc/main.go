// Command evmrecalc recomputes the derived fields of stored EVM records with
// the configured calculator and reports the records that drifted. With
// -apply the drifted records are rewritten under their version check.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	evmapp "github.com/projectcontrols/backend/internal/application/evm"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/cache"
	"github.com/projectcontrols/backend/internal/infrastructure/config"
	"github.com/projectcontrols/backend/internal/infrastructure/event"
	"github.com/projectcontrols/backend/internal/infrastructure/logger"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type options struct {
	configPath       string
	envFile          string
	tenantID         uuid.UUID
	controlAccountID *uuid.UUID
	apply            bool
	format           string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	os.Exit(run(opts))
}

func parseFlags(args []string) (options, error) {
	fsFlags := flag.NewFlagSet("evmrecalc", flag.ContinueOnError)
	var (
		opts      options
		tenant    string
		accountID string
	)
	fsFlags.StringVar(&opts.configPath, "config", "", "Path to config.toml (default: search working directory)")
	fsFlags.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the configuration")
	fsFlags.StringVar(&tenant, "tenant", "", "Tenant ID whose records are recalculated (required)")
	fsFlags.StringVar(&accountID, "control-account", "", "Limit the run to one control account")
	fsFlags.BoolVar(&opts.apply, "apply", false, "Persist recalculated values of drifted records")
	fsFlags.StringVar(&opts.format, "format", "text", "Report format: text or json")
	if err := fsFlags.Parse(args); err != nil {
		return options{}, err
	}

	if tenant == "" {
		return options{}, errors.New("-tenant is required")
	}
	id, err := uuid.Parse(tenant)
	if err != nil {
		return options{}, fmt.Errorf("invalid -tenant: %w", err)
	}
	opts.tenantID = id

	if accountID != "" {
		caID, err := uuid.Parse(accountID)
		if err != nil {
			return options{}, fmt.Errorf("invalid -control-account: %w", err)
		}
		opts.controlAccountID = &caID
	}
	if opts.format != "text" && opts.format != "json" {
		return options{}, fmt.Errorf("unknown -format %q", opts.format)
	}
	return opts, nil
}

func run(opts options) int {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", opts.envFile, err)
		return 1
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()
	log = logger.Component(log, "evmrecalc")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize tracing", zap.Error(err))
		return 1
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize metrics", zap.Error(err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	dbOpts := []persistence.Option{
		persistence.WithLogger(logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)),
	}
	if cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter:    meterProvider.Meter("projectcontrols/evmrecalc"),
		Logger:   log,
		Provider: persistence.NewGormIndexProvider(db.DB),
	})
	if err != nil {
		log.Error("Failed to create metrics", zap.Error(err))
		return 1
	}

	caches := cache.NewFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log))
	defer func() {
		_ = caches.Close()
	}()
	snapshots, err := caches.SnapshotCache(ctx)
	if err != nil {
		log.Error("Failed to open snapshot cache", zap.Error(err))
		return 1
	}
	store, err := caches.IdempotencyStore(ctx)
	if err != nil {
		log.Error("Failed to open idempotency store", zap.Error(err))
		return 1
	}

	bus := event.NewInMemoryEventBus(log)
	audit := newCorrectionAudit(log)
	bus.Subscribe(event.NewIdempotentHandler(audit, store, log,
		event.WithIdempotencyEnabled(cfg.Event.IdempotencyEnabled),
		event.WithIdempotencyTTL(cfg.Event.IdempotencyTTL),
	))
	if err := bus.Start(ctx); err != nil {
		log.Error("Failed to start event bus", zap.Error(err))
		return 1
	}
	defer func() {
		_ = bus.Stop(context.Background())
	}()

	calcOpts, err := cfg.EVM.CalculatorOptions()
	if err != nil {
		log.Error("Invalid calculator settings", zap.Error(err))
		return 1
	}

	repos := db.Repositories()
	svc := evmapp.NewEVMService(repos.EVMRecords, repos.ControlAccounts, evm.NewCalculator(calcOpts...))
	svc.SetLogger(log)
	svc.SetMetrics(metrics)
	svc.SetMaxRetries(cfg.Concurrency.MaxRetries)
	svc.SetEventPublisher(bus)
	if snapshots != nil {
		svc.SetSnapshotCache(snapshots)
	}

	log.Info("Recalculating EVM records",
		zap.String("tenant_id", opts.tenantID.String()),
		zap.Bool("apply", opts.apply),
		zap.String("eac_method", svc.Calculator().EACStrategy().Method().String()),
		zap.String("thresholds", svc.Calculator().Thresholds().Name),
	)

	report, err := svc.Recalculate(ctx, opts.tenantID, opts.controlAccountID, opts.apply, shared.SystemPrincipal)
	if err != nil {
		log.Error("Recalculation failed", zap.Error(err))
		return 1
	}
	if opts.apply && report.Applied > 0 {
		metrics.Collect(ctx)
	}

	if err := writeReport(os.Stdout, report, opts.format); err != nil {
		log.Error("Failed to write report", zap.Error(err))
		return 1
	}
	log.Info("Corrections published", zap.Int("count", audit.Count()))

	if report.Failed > 0 {
		return 1
	}
	return 0
}
