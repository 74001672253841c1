package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Belphemur/vttbridge/internal/cache"
	"github.com/Belphemur/vttbridge/internal/client"
	"github.com/Belphemur/vttbridge/internal/config"
	grpcserver "github.com/Belphemur/vttbridge/internal/grpc"
	"github.com/Belphemur/vttbridge/internal/httpapi"
	"github.com/Belphemur/vttbridge/internal/metrics"
	"github.com/Belphemur/vttbridge/internal/parser"
	"github.com/Belphemur/vttbridge/internal/services"
	"github.com/getsentry/sentry-go"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Int("http_port", cfg.HTTP.Port).
		Str("cache_provider", cfg.Cache.Provider).
		Str("default_encoding", cfg.Decoder.DefaultEncoding).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	subtitleCache, err := cache.NewFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create subtitle cache")
	}

	httpClient := client.NewClient(cfg)
	defer httpClient.Close()

	pipeline := services.NewSubtitlePipeline(
		httpClient,
		parser.NewSubtitleDecoder(parser.DecodeOptions{DefaultEncoding: cfg.Decoder.DefaultEncoding}),
		services.NewSubtitleConverter(),
		subtitleCache,
	)
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close subtitle cache")
		}
	}()

	grpcServer := grpcserver.NewGRPCServer(pipeline)

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	apiServer := httpapi.NewServer(cfg.Server.Address, cfg.HTTP.Port, pipeline, httpapi.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	go func() {
		logger.Info().Str("address", apiServer.Addr).Msg("Starting subtitle HTTP server")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to serve HTTP API")
		}
	}()

	// Create a listener
	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		logger.Fatal().Err(err).Str("address", address).Msg("Failed to create listener")
	}

	logger.Info().Str("address", address).Msg("Starting gRPC server")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP API server")
		}
		grpcServer.GracefulStop()
	}()

	// Start serving
	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatal().Err(err).Msg("Failed to serve gRPC")
	}

	logger.Info().Msg("Server stopped gracefully")
}
