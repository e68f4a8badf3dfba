package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/lienzo/internal/application/codec"
	"github.com/aescanero/lienzo/internal/application/executor"
	"github.com/aescanero/lienzo/internal/application/graph"
	"github.com/aescanero/lienzo/internal/application/history"
	"github.com/aescanero/lienzo/internal/application/outputs"
	"github.com/aescanero/lienzo/internal/config"
	"github.com/aescanero/lienzo/pkg/adapters/events/redis"
	"github.com/aescanero/lienzo/pkg/adapters/fetcher/httpfetch"
	"github.com/aescanero/lienzo/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/lienzo/pkg/adapters/runner"
	redisstorage "github.com/aescanero/lienzo/pkg/adapters/storage/redis"
	"github.com/aescanero/lienzo/pkg/api/grpc"
	"github.com/aescanero/lienzo/pkg/api/http"
	"github.com/aescanero/lienzo/pkg/api/websocket"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting canvas runtime",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize adapters
	eventBus, err := redis.NewStreamsEventBus(
		redisClient,
		"lienzo-clients",
		fmt.Sprintf("lienzo-%d", os.Getpid()),
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create event bus", zap.Error(err))
	}

	workflowStore := redisstorage.NewWorkflowStore(redisClient, logger)

	nodeRunner, err := runner.NewRunner(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create node runner", zap.Error(err))
	}

	fetcher := httpfetch.NewFetcher(
		cfg.Generation.FetchTimeout,
		cfg.Generation.FetchMaxBytes,
		logger,
	)

	metricsCollector := prometheus.NewCollector()

	// Initialize application components
	store := graph.NewStore(logger)
	historyMgr := history.NewManager(store.Nodes(), store.Edges(), logger)
	outputAdapter := outputs.NewAdapter(store, fetcher, metricsCollector, logger)
	workflowCodec := codec.NewCodec(logger)

	orchestrator := executor.NewOrchestrator(
		store,
		outputAdapter,
		nodeRunner,
		eventBus,
		metricsCollector,
		logger,
	)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:      cfg.HTTPPort,
		Store:     store,
		History:   historyMgr,
		Executor:  orchestrator,
		Codec:     workflowCodec,
		Workflows: workflowStore,
		Metrics:   metricsCollector,
		Logger:    logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:     cfg.GRPCPort,
		Executor: orchestrator,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("canvas runtime started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	// Shutdown components
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("canvas runtime shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
