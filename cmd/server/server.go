package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-tracker/internal/config"
	"github.com/KirkDiggler/rpg-tracker/internal/handlers/api/v1alpha1"
	restv1 "github.com/KirkDiggler/rpg-tracker/internal/handlers/rest/v1"
	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-tracker/internal/telemetry"
)

const serviceName = "rpg-tracker"

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the REST and gRPC servers",
	Long: `Start the encounter engine behind a REST API and a gRPC service.
Settings come from RPG_TRACKER_* environment variables; flags override them.`,
	RunE: runServer,
}

func init() {
	serveCmd.Flags().String("http-addr", "", "REST listen address (empty keeps RPG_TRACKER_HTTP_ADDR)")
	serveCmd.Flags().String("grpc-addr", "", "gRPC listen address (empty keeps RPG_TRACKER_GRPC_ADDR)")
	serveCmd.Flags().String("storage", "", "storage backend: memory, redis, sqlite or postgres")
	serveCmd.Flags().String("status-mode", "", "status update mode: guarded or direct")

	migrateCmd.Flags().String("storage", "", "storage backend: sqlite or postgres")
}

// applyServeFlags lets explicitly set flags override the environment
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	overrides := map[string]*string{
		"http-addr":   &cfg.HTTPAddr,
		"grpc-addr":   &cfg.GRPCAddr,
		"storage":     &cfg.Storage,
		"status-mode": &cfg.StatusUpdateMode,
	}

	changed := false
	for name, target := range overrides {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		*target = flag.Value.String()
		changed = true
	}

	if !changed {
		return nil
	}
	return cfg.Validate()
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}

	logger := telemetry.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	clk := clock.New()

	repo, closeRepo, err := newRepository(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer closeRepo()

	encounterIDs, err := idgen.NewFromKind(cfg.IDGenerator, "enc")
	if err != nil {
		return err
	}
	participantIDs, err := idgen.NewFromKind(cfg.IDGenerator, "part")
	if err != nil {
		return err
	}

	encounterService, err := encounter.NewOrchestrator(&encounter.Config{
		Repository:             repo,
		IDGenerator:            encounterIDs,
		ParticipantIDGenerator: participantIDs,
		Clock:                  clk,
		StatusUpdateMode:       encounter.StatusUpdateMode(cfg.StatusUpdateMode),
	})
	if err != nil {
		return fmt.Errorf("failed to create encounter orchestrator: %w", err)
	}

	logger.Info("encounter engine ready",
		"storage", cfg.Storage,
		"status_update_mode", cfg.StatusUpdateMode,
		"id_generator", cfg.IDGenerator)

	errChan := make(chan error, 2)

	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.GRPCAddr != "" {
		grpcServer, healthServer, err = newGRPCServer(logger, encounterService)
		if err != nil {
			return err
		}

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}

		go func() {
			logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				errChan <- fmt.Errorf("failed to serve gRPC: %w", err)
			}
		}()
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: restv1.NewRouter(restv1.RouterConfig{
				Logger:           logger,
				EncounterService: encounterService,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("failed to serve HTTP: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal, gracefully stopping")
	case serveErr = <-errChan:
		logger.Error("server failed", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if healthServer != nil {
		healthServer.Shutdown()
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", "error", err)
		}
	}
	if grpcServer != nil {
		stopGRPC(shutdownCtx, logger, grpcServer)
	}

	return serveErr
}

// newGRPCServer wires interceptors, the encounter service, health and reflection
func newGRPCServer(logger *slog.Logger, encounterService encounter.Service) (*grpc.Server, *health.Server, error) {
	encounterHandler, err := v1alpha1.NewEncounterHandler(&v1alpha1.EncounterHandlerConfig{
		EncounterService: encounterService,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create encounter handler: %w", err)
	}

	recoveryOpt := grpc_recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		logger.ErrorContext(ctx, "panic recovered in gRPC handler", "panic", p)
		return status.Error(codes.Internal, "internal error")
	})

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	v1alpha1.RegisterEncounterServiceServer(srv, encounterHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	return srv, healthServer, nil
}

func stopGRPC(ctx context.Context, logger *slog.Logger, srv *grpc.Server) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		logger.Warn("graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		logger.Info("gRPC server stopped gracefully")
	}
}

// interceptorLogger adapts slog to the go-grpc-middleware logger
func interceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}
