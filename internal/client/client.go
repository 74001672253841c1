package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Belphemur/vttbridge/internal/config"
	"github.com/Belphemur/vttbridge/internal/models"
)

// Client retrieves raw subtitle resources over HTTP(S)
type Client interface {
	// FetchSubtitle downloads the subtitle at sourceID. Archives are unwrapped to their
	// first subtitle entry. Failures to reach the source are *apperrors.RetrievalError.
	FetchSubtitle(ctx context.Context, sourceID string) (*models.RawSubtitle, error)

	// Close releases idle connections.
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
}

// NewClient creates a new client instance with proxy configuration if provided
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	timeout := 30 * time.Second // default
	if cfg.ClientTimeout != "" {
		if parsedTimeout, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsedTimeout
		}
	}

	// Clone DefaultTransport to keep its pooling, HTTP/2 and dial timeouts
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	// No cookie jar: subtitle requests never carry credentials
	return newClientWithHTTP(&http.Client{
		Timeout:   timeout,
		Transport: newSubtitleTransport(baseTransport, userAgent),
	})
}

func newClientWithHTTP(httpClient *http.Client) *client {
	return &client{httpClient: httpClient}
}

// Close releases idle connections held by the underlying transport.
func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
