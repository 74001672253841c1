package grpc

import (
	"context"
	"fmt"

	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/getsentry/sentry-go"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// interceptorLogger adapts a zerolog logger to the go-grpc-middleware logging interface.
func interceptorLogger(l zerolog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		callLogger := l.With().Fields(fields).Logger()

		switch lvl {
		case logging.LevelDebug:
			callLogger.Debug().Msg(msg)
		case logging.LevelInfo:
			callLogger.Info().Msg(msg)
		case logging.LevelWarn:
			callLogger.Warn().Msg(msg)
		case logging.LevelError:
			callLogger.Error().Msg(msg)
		default:
			callLogger.Warn().Int("level", int(lvl)).Msg(msg)
		}
	})
}

// recoverPanic turns a handler panic into codes.Internal and reports it to Sentry.
func recoverPanic(ctx context.Context, p any) error {
	logger := config.GetLogger()
	logger.Error().Interface("panic", p).Msg("Recovered from panic in gRPC handler")

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.RecoverWithContext(ctx, p)

	return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", p))
}
