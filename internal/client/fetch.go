package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/models"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"
)

// FetchSubtitle downloads a subtitle in a single pass. When the download fails, a
// reachability probe runs for diagnostics only and the original failure is returned.
func (c *client) FetchSubtitle(ctx context.Context, sourceID string) (*models.RawSubtitle, error) {
	logger := config.GetLogger()

	sourceURL, err := parseSourceURL(sourceID)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("url", sourceID).Msg("Fetching subtitle")

	raw, err := failsafe.With[*models.RawSubtitle](c.probeFallback(sourceID)).
		WithContext(ctx).
		Get(func() (*models.RawSubtitle, error) {
			return c.download(ctx, sourceID)
		})
	if err != nil {
		return nil, err
	}

	raw.Filename = path.Base(sourceURL.Path)

	entry, archived, err := unwrapArchive(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract subtitle from archive %s: %w", sourceID, err)
	}
	if archived {
		logger.Debug().
			Str("url", sourceID).
			Str("filename", entry.Filename).
			Int("size", len(entry.Content)).
			Msg("Extracted subtitle from archive")
		raw.Filename = entry.Filename
		raw.Content = entry.Content
		raw.ContentType = ""
	}

	return raw, nil
}

// download performs the primary GET and maps every failure to a RetrievalError.
func (c *client) download(ctx context.Context, sourceID string) (*models.RawSubtitle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceID, nil)
	if err != nil {
		return nil, apperrors.NewRetrievalError(sourceID, 0, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewRetrievalError(sourceID, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewRetrievalError(sourceID, resp.StatusCode, &apperrors.ErrSubtitleResourceNotFound{URL: sourceID})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewRetrievalError(sourceID, resp.StatusCode, nil)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewRetrievalError(sourceID, 0, fmt.Errorf("failed to read response body: %w", err))
	}

	return &models.RawSubtitle{
		SourceID:    sourceID,
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// probeFallback runs a HEAD request after a failed download so the logs show whether the
// host is reachable at all. It never turns a failure into a success.
func (c *client) probeFallback(sourceID string) fallback.Fallback[*models.RawSubtitle] {
	return fallback.NewWithFunc(func(exec failsafe.Execution[*models.RawSubtitle]) (*models.RawSubtitle, error) {
		c.probe(exec.Context(), sourceID, exec.LastError())
		return nil, exec.LastError()
	})
}

func (c *client) probe(ctx context.Context, sourceID string, cause error) {
	logger := config.GetLogger()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, sourceID, nil)
	if err != nil {
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().
			Err(cause).
			Str("url", sourceID).
			Str("probe_error", err.Error()).
			Msg("Subtitle download failed and source is unreachable")
		return
	}
	resp.Body.Close()

	logger.Warn().
		Err(cause).
		Str("url", sourceID).
		Int("probe_status", resp.StatusCode).
		Msg("Subtitle download failed but source is reachable")
}

func parseSourceURL(sourceID string) (*url.URL, error) {
	u, err := url.Parse(sourceID)
	if err != nil {
		return nil, &apperrors.ErrInvalidSource{SourceID: sourceID, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &apperrors.ErrInvalidSource{SourceID: sourceID, Reason: "only http and https sources are supported"}
	}
	if u.Host == "" {
		return nil, &apperrors.ErrInvalidSource{SourceID: sourceID, Reason: "missing host"}
	}
	return u, nil
}
