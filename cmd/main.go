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
	"sync"
	"syscall"
	"time"

	"friend-chat/contract"
	"friend-chat/internal"
	"friend-chat/moderation"
	"friend-chat/repositories"
	"friend-chat/runtime"
	"friend-chat/runtime/workers"
	"friend-chat/transport/rest"
	"friend-chat/transport/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups (database close) always run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	censoredChar, err := config.CensoredRune()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, endpoint, repositories.InspectMapper)
	}

	// 3. Supervision & Orchestration
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	storyRepository := repositories.NewStoryRepository(db, logger)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, registry,
		messageRepository, storyRepository,
		config.BufferSize, config.SinkTimeout, config.StorySweepInterval)

	if words := config.CensoredWordList(); len(words) > 0 {
		moderator, err := moderation.NewModerator(words, censoredChar)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
		}
		orchestrator.WithContentFilter(moderator)
		logger.Info("Message moderation enabled", "words", len(words))
	}

	healthServer := health.NewServer()
	supervisor.Add(workers.NewHealthMonitoringWorker(logger, registry,
		config.MetricInterval, config.RamThreshold, func(h workers.Health) {
			status := healthpb.HealthCheckResponse_SERVING
			if !h.Serving {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			healthServer.SetServingStatus("", status)
		}))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 3)

	// Deferred after the database close, so it runs first: no worker is left
	// inside a Badger transaction when the database closes.
	stopOrchestrator, _ := startOrchestrator(ctx, logger, orchestrator, errChan)
	defer stopOrchestrator()

	// 5. HTTP server (REST + WebSocket)
	wsServer := ws.NewServer(logger, orchestrator, ws.Options{
		BufferSize:      config.ConnectionBufferSize,
		DispatchTimeout: config.DispatchTimeout,
		WriteWait:       config.WriteWait,
		PongWait:        config.PongWait,
	})
	if config.AuthSecret == "" {
		logger.Warn("AUTH_SECRET is empty, connections are not authenticated")
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           rest.NewRouter(logger, orchestrator, wsServer, []byte(config.AuthSecret)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. gRPC health endpoint, updated by the health monitoring worker
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	go func() {
		logger.Info("Starting gRPC server", "address", grpcAddress)
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code, runErr := exitOK, error(nil)
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		code, runErr = exitRuntime, err
	}

	// 8. Graceful shutdown
	logger.Info("Shutting down gracefully...")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	s.GracefulStop()
	stopOrchestrator()
	logger.Info("Program stopped cleanly")

	return code, runErr
}

// startOrchestrator runs the orchestrator in its own goroutine. The returned stop
// cancels it and blocks until Start returned, it is safe to call more than once.
func startOrchestrator(ctx context.Context, logger *slog.Logger,
	orchestrator contract.IOrchestrator, errChan chan<- error) (func(), <-chan struct{}) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case errChan <- fmt.Errorf("orchestrator error: %w", err):
			default:
			}
		}
	}()

	stop := sync.OnceFunc(func() {
		cancel()
		orchestrator.Stop()
		<-done
		logger.Info("Orchestrator stopped")
	})
	return stop, done
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
