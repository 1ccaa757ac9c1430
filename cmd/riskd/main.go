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

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/messaging"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
	"github.com/bibbank/creditrisk/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/creditrisk/internal/infrastructure/telemetry"
	grpcpresentation "github.com/bibbank/creditrisk/internal/presentation/grpc"
	"github.com/bibbank/creditrisk/internal/presentation/rest"
	"github.com/bibbank/creditrisk/pkg/kafka"
	"github.com/bibbank/creditrisk/pkg/observability"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("creditrisk stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("starting creditrisk",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
	)

	// Tracing is optional.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Environment: cfg.Environment,
			SampleRatio: cfg.TraceSampleRatio,
			Insecure:    cfg.Environment == "development",
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() {
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer flushCancel()
				_ = shutdown(flushCtx)
			}()
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{})
	if err != nil {
		return err
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := telemetry.NewMetrics(meterProvider)
	if err != nil {
		return err
	}

	// Database connection and schema.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := cfg.Postgres()
	pool, err := pgutil.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	if err := postgres.Migrate(pgCfg.DSN()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Classifier artifact. A missing artifact does not stop startup; scoring
	// fails until it is reloaded and readiness reports it.
	source, err := ml.NewSource(ctx, cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact source: %w", err)
	}
	if closer, ok := source.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	artifacts := ml.NewArtifactCache(source, logger)
	if _, err := artifacts.Current(ctx); err != nil {
		logger.Warn("classifier artifact not loaded at startup", "location", source.Location(), "error", err)
	}

	// Infrastructure adapters.
	store := postgres.NewStore(pool)
	outbox := postgres.NewOutboxRepository(pool)
	clock := port.SystemClock{}

	// Domain services and use cases.
	scorer := service.NewScoringOrchestrator(artifacts, logger)
	recorder := usecase.NewAuditRecorder(store, clock, metrics, logger)
	scoreUC := usecase.NewScoreCustomer(store, scorer, recorder, clock, metrics, logger)
	editUC := usecase.NewEditCustomer(store, scorer, recorder, clock, logger)
	historyUC := usecase.NewGetHistory(store)
	reloadUC := usecase.NewReloadArtifact(artifacts, metrics, logger)
	reconcileUC := usecase.NewReconcileCategories(store, store, recorder, logger)
	ingestUC := usecase.NewIngestFeatures(store, scoreUC, editUC, clock, logger)

	// gRPC server.
	grpcHandler := grpcpresentation.NewRiskServiceHandler(
		scoreUC,
		editUC,
		historyUC,
		reloadUC,
		reconcileDefaults{uc: reconcileUC, cfg: cfg.Reconcile},
		logger,
	)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddr(), grpcpresentation.ServerOptions{
		TLS:        cfg.ServerTLS(),
		Reflection: cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	health := rest.NewHealthHandler(store, artifacts, logger)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      rest.NewMux(health, metricsHandler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(grpcServer.Start)

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if cfg.KafkaEnabled() {
		kafkaCfg := cfg.KafkaClient()

		producer, err := kafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer producer.Close()

		relay := messaging.NewOutboxRelay(outbox, producer, cfg.Kafka.EventsTopic,
			cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, logger)
		g.Go(func() error { return relay.Run(gctx) })

		features := messaging.NewFeaturesHandler(ingestUC, logger)
		consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Kafka.FeaturesTopic, features.Handle, logger)
		if err != nil {
			return fmt.Errorf("failed to create features consumer: %w", err)
		}
		defer consumer.Close()
		g.Go(func() error { return consumer.Start(gctx) })
	} else {
		logger.Warn("kafka not configured, outbox relay and features consumer disabled")
	}

	// Stop the servers once any component fails or a signal arrives.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down creditrisk")

		grpcServer.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	logger.Info("creditrisk started",
		"grpc_address", cfg.GRPCAddr(),
		"http_address", cfg.HTTPAddr(),
		"artifact", source.Location(),
	)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("creditrisk stopped")
	return nil
}

// reconcileDefaults fills unset request knobs from configuration.
type reconcileDefaults struct {
	uc  *usecase.ReconcileCategories
	cfg config.ReconcileConfig
}

func (r reconcileDefaults) Execute(ctx context.Context, req dto.ReconcileRequest) (dto.ReconcileResponse, error) {
	if req.Workers <= 0 {
		req.Workers = r.cfg.Workers
	}
	if req.BatchSize <= 0 {
		req.BatchSize = r.cfg.BatchSize
	}
	return r.uc.Execute(ctx, req)
}
