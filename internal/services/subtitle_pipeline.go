package services

import (
	"context"

	"github.com/Belphemur/vttbridge/internal/models"
)

// SubtitleFetcher retrieves the raw bytes of a subtitle resource
type SubtitleFetcher interface {
	FetchSubtitle(ctx context.Context, sourceID string) (*models.RawSubtitle, error)
}

// SubtitlePipeline defines the interface for turning a subtitle URL into WebVTT text
type SubtitlePipeline interface {
	// GetSubtitle returns the WebVTT rendition of the subtitle at sourceID, serving it
	// from the cache when a previous run already converted it.
	GetSubtitle(ctx context.Context, sourceID string) (*models.ConvertedDocument, error)

	// ClearCache drops every cached conversion.
	ClearCache()

	// Close releases the cache.
	Close() error
}
