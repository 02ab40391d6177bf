package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wso2/api-platform/gateway/connection-agent/pkg/backoff"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/config"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/httpreq"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/logger"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/metrics"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/retry"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/status"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/transport"
	"github.com/wso2/api-platform/gateway/connection-agent/pkg/urlutil"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with config
	log, err := logger.NewLogger(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Connection-Agent",
		zap.String("config_file", *configPath),
		zap.String("endpoint_url", cfg.Connection.URL),
		zap.Bool("token_configured", cfg.Connection.Token != ""),
		zap.Uint("max_attempts", cfg.Connection.MaxAttempts),
	)

	urlutil.SetLogger(log)

	// Initialize metrics and start the metrics server if enabled
	metrics.SetEnabled(cfg.Metrics.Enabled)
	metrics.Init()

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port, log)
		if err := metricsServer.Start(); err != nil {
			log.Fatal("Failed to start metrics server", zap.Error(err))
		}
	} else {
		log.Info("Metrics server is disabled")
	}

	// Start the status server
	tracker := status.NewTracker()
	var statusServer *status.Server
	if cfg.Status.Enabled {
		statusServer = status.NewServer(tracker, cfg.Status.Port, log)
		statusServer.Start()
	}

	// Derive the HTTP request target from the configured URL
	rawURL := []byte(cfg.Connection.URL)
	target, err := httpreq.ParseTarget(rawURL)
	if err != nil {
		log.Fatal("Failed to parse endpoint URL", zap.Error(err))
	}
	log.Info("Resolved endpoint target",
		zap.String("host", target.HostHeader()),
		zap.String("request_line", target.RequestLine("GET")),
	)

	// Build the endpoint and connect function
	endpoint := &transport.WSEndpoint{
		URL:                cfg.Connection.URL,
		Token:              cfg.Connection.Token,
		HandshakeTimeout:   cfg.Connection.HandshakeTimeout,
		InsecureSkipVerify: cfg.Connection.InsecureSkipVerify,
	}
	connect := transport.NewWSConnectFunc(log)

	connector := retry.NewConnector(backoff.Config{
		Base:        cfg.Connection.BackoffBase,
		Max:         cfg.Connection.BackoffMax,
		MaxAttempts: cfg.Connection.MaxAttempts,
	}, log)

	// Establish the connection with backoff retries
	tracker.SetState(status.Connecting)
	err = connector.ConnectWithBackoffRetries(func(nctx retry.NetworkContext) error {
		cerr := connect(nctx)
		tracker.RecordAttempt(cerr)
		return cerr
	}, endpoint)
	if err != nil {
		tracker.SetState(status.Exhausted)
		log.Error("Failed to establish connection", zap.Error(err))
	} else {
		tracker.SetState(status.Connected)
		log.Info("Connection established",
			zap.String("connection_id", endpoint.ConnectionID()),
		)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Connection-Agent")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := endpoint.Close(); err != nil {
		log.Warn("Failed to close connection", zap.Error(err))
	}
	tracker.SetState(status.Disconnected)

	if statusServer != nil {
		if err := statusServer.Stop(ctx); err != nil {
			log.Error("Status server forced to shutdown", zap.Error(err))
		}
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(ctx); err != nil {
			log.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}

	log.Info("Connection-Agent stopped")
}
