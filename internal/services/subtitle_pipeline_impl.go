package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/cache"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/metrics"
	"github.com/Belphemur/vttbridge/internal/models"
	"github.com/Belphemur/vttbridge/internal/parser"
	"github.com/getsentry/sentry-go"
)

// DefaultSubtitlePipeline chains fetch, decode, convert and cache
type DefaultSubtitlePipeline struct {
	fetcher   SubtitleFetcher
	decoder   *parser.SubtitleDecoder
	converter SubtitleConverter
	cache     cache.Cache
}

// NewSubtitlePipeline creates a new pipeline over the given collaborators
func NewSubtitlePipeline(fetcher SubtitleFetcher, decoder *parser.SubtitleDecoder, converter SubtitleConverter, c cache.Cache) SubtitlePipeline {
	return &DefaultSubtitlePipeline{
		fetcher:   fetcher,
		decoder:   decoder,
		converter: converter,
		cache:     c,
	}
}

// GetSubtitle implements SubtitlePipeline.GetSubtitle. The cache is written only after a
// conversion fully succeeds; concurrent misses for the same source each fetch.
func (p *DefaultSubtitlePipeline) GetSubtitle(ctx context.Context, sourceID string) (*models.ConvertedDocument, error) {
	logger := config.GetLogger()

	if cached, ok := p.cache.Get(sourceID); ok {
		logger.Debug().Str("url", sourceID).Msg("Serving subtitle from cache")
		metrics.SubtitlePipelineRequestsTotal.WithLabelValues(metrics.StatusCached).Inc()
		return &models.ConvertedDocument{Text: string(cached), Cached: true}, nil
	}

	raw, err := p.fetcher.FetchSubtitle(ctx, sourceID)
	if err != nil {
		p.recordFetchFailure(sourceID, err)
		return nil, fmt.Errorf("failed to fetch subtitle: %w", err)
	}

	doc, err := p.decoder.DecodeBytes(raw.Content)
	if err != nil {
		metrics.SubtitlePipelineRequestsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, fmt.Errorf("failed to decode subtitle %s: %w", sourceID, err)
	}
	metrics.SubtitleDecodedEncodingTotal.WithLabelValues(doc.Encoding).Inc()

	name := raw.Filename
	if name == "" {
		name = sourceID
	}
	doc.Format = InferFormat(name, raw.ContentType, doc.Text)

	converted := p.converter.ToWebVTT(doc.Text, doc.Format)

	logger.Info().
		Str("url", sourceID).
		Str("encoding", doc.Encoding).
		Bool("lossy", doc.Lossy).
		Str("format", string(doc.Format)).
		Int("dropped_blocks", converted.DroppedBlocks).
		Int("size", len(converted.Text)).
		Msg("Converted subtitle to WebVTT")

	p.cache.Set(sourceID, []byte(converted.Text))
	metrics.SubtitlePipelineRequestsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	return &converted, nil
}

func (p *DefaultSubtitlePipeline) recordFetchFailure(sourceID string, err error) {
	logger := config.GetLogger()

	var retrievalErr *apperrors.RetrievalError
	switch {
	case errors.As(err, &retrievalErr):
		logger.Error().Err(err).Str("url", sourceID).Int("status", retrievalErr.StatusCode).Msg("Failed to retrieve subtitle")
		metrics.SubtitlePipelineRequestsTotal.WithLabelValues(metrics.StatusRetrievalError).Inc()
		sentry.CaptureException(err)
	case errors.Is(err, &apperrors.ErrInvalidSource{}):
		logger.Warn().Err(err).Str("url", sourceID).Msg("Rejected subtitle source")
		metrics.SubtitlePipelineRequestsTotal.WithLabelValues(metrics.StatusInvalidSource).Inc()
	default:
		logger.Error().Err(err).Str("url", sourceID).Msg("Failed to fetch subtitle")
		metrics.SubtitlePipelineRequestsTotal.WithLabelValues(metrics.StatusError).Inc()
	}
}

// ClearCache implements SubtitlePipeline.ClearCache
func (p *DefaultSubtitlePipeline) ClearCache() {
	n := p.cache.Len()
	p.cache.Clear()
	logger := config.GetLogger()
	logger.Info().Int("entries", n).Msg("Cleared subtitle cache")
}

// Close implements SubtitlePipeline.Close
func (p *DefaultSubtitlePipeline) Close() error {
	return p.cache.Close()
}
