package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/services"
	"github.com/rs/zerolog"
)

// CacheStatusHeader is the response header reporting whether the subtitle came from the cache.
const CacheStatusHeader = "x-subtitle-cache"

// server implements the SubtitleServiceServer interface
type server struct {
	pipeline services.SubtitlePipeline
	logger   zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(p services.SubtitlePipeline) SubtitleServiceServer {
	return &server{
		pipeline: p,
		logger:   config.GetLogger(),
	}
}

// GetSubtitle implements SubtitleServiceServer.GetSubtitle
func (s *server) GetSubtitle(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	sourceID := req.GetValue()
	s.logger.Debug().Str("url", sourceID).Msg("GetSubtitle called")

	if sourceID == "" {
		return nil, status.Error(codes.InvalidArgument, "subtitle url is required")
	}

	doc, err := s.pipeline.GetSubtitle(ctx, sourceID)
	if err != nil {
		s.logger.Error().Err(err).Str("url", sourceID).Msg("Failed to get subtitle")
		return nil, toStatusError(err)
	}

	cacheStatus := "miss"
	if doc.Cached {
		cacheStatus = "hit"
	}
	// Fails only outside a real RPC, e.g. when called directly from tests.
	_ = grpc.SetHeader(ctx, metadata.Pairs(CacheStatusHeader, cacheStatus))

	s.logger.Debug().
		Str("url", sourceID).
		Bool("cached", doc.Cached).
		Int("size", len(doc.Text)).
		Msg("GetSubtitle completed")
	return wrapperspb.String(doc.Text), nil
}

// ClearCache implements SubtitleServiceServer.ClearCache
func (s *server) ClearCache(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.logger.Info().Msg("ClearCache called")
	s.pipeline.ClearCache()
	return &emptypb.Empty{}, nil
}

// toStatusError maps pipeline errors onto gRPC status codes.
func toStatusError(err error) error {
	switch {
	case errors.Is(err, &apperrors.ErrInvalidSource{}):
		return status.Errorf(codes.InvalidArgument, "invalid subtitle source: %v", err)
	case errors.Is(err, &apperrors.ErrSubtitleResourceNotFound{}):
		return status.Errorf(codes.NotFound, "subtitle not found: %v", err)
	case errors.Is(err, &apperrors.ErrNoSubtitleInArchive{}):
		return status.Errorf(codes.NotFound, "no subtitle in archive: %v", err)
	case errors.Is(err, &apperrors.RetrievalError{}):
		return status.Errorf(codes.Unavailable, "failed to retrieve subtitle: %v", err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "failed to get subtitle: %v", err)
	}
}
