package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Belphemur/vttbridge/internal/apperrors"
	"github.com/Belphemur/vttbridge/internal/cache"
	"github.com/Belphemur/vttbridge/internal/models"
	"github.com/Belphemur/vttbridge/internal/parser"
	"github.com/Belphemur/vttbridge/internal/services"
	"github.com/Belphemur/vttbridge/internal/testutil"
)

// mockPipeline implements services.SubtitlePipeline for testing
type mockPipeline struct {
	getSubtitleFunc func(ctx context.Context, sourceID string) (*models.ConvertedDocument, error)
	clearCalls      int
}

func (m *mockPipeline) GetSubtitle(ctx context.Context, sourceID string) (*models.ConvertedDocument, error) {
	if m.getSubtitleFunc != nil {
		return m.getSubtitleFunc(ctx, sourceID)
	}
	return &models.ConvertedDocument{Text: "WEBVTT\n\n"}, nil
}

func (m *mockPipeline) ClearCache() { m.clearCalls++ }

func (m *mockPipeline) Close() error { return nil }

func newTestServer(t *testing.T, p services.SubtitlePipeline, opts Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(p, opts))
	t.Cleanup(srv.Close)
	return srv
}

func subtitleURL(base, src string) string {
	return base + "/subtitles.vtt?src=" + url.QueryEscape(src)
}

func TestGetSubtitle_ServesWebVTT(t *testing.T) {
	const src = "https://subs.example.com/ep1.srt?token=a&lang=en"
	blocks := testutil.DefaultSRTBlocks()

	fetcher := testutil.NewStubFetcher(map[string]testutil.FetchResult{
		src: {Raw: &models.RawSubtitle{SourceID: src, Filename: "ep1.srt", Content: []byte(testutil.GenerateSRT(blocks))}},
	})
	c, err := cache.New("memory", cache.ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	pipeline := services.NewSubtitlePipeline(fetcher, parser.NewSubtitleDecoder(parser.DecodeOptions{}), services.NewSubtitleConverter(), c)
	defer pipeline.Close()

	srv := newTestServer(t, pipeline, Options{})

	for i, wantCache := range []string{"miss", "hit"} {
		resp, err := http.Get(subtitleURL(srv.URL, src))
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d: %s", i+1, resp.StatusCode, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "text/vtt; charset=utf-8" {
			t.Errorf("Request %d: expected text/vtt content type, got %q", i+1, ct)
		}
		if got := resp.Header.Get(CacheStatusHeader); got != wantCache {
			t.Errorf("Request %d: expected cache status %q, got %q", i+1, wantCache, got)
		}
		if want := testutil.GenerateWebVTT(blocks); string(body) != want {
			t.Errorf("Request %d: expected %q, got %q", i+1, want, body)
		}
	}

	if calls := fetcher.Calls(src); calls != 1 {
		t.Errorf("Expected the exact source to be fetched once, got %d", calls)
	}
}

func TestGetSubtitle_MissingSource(t *testing.T) {
	mock := &mockPipeline{
		getSubtitleFunc: func(ctx context.Context, sourceID string) (*models.ConvertedDocument, error) {
			t.Error("Pipeline must not be called without src")
			return nil, nil
		},
	}
	srv := newTestServer(t, mock, Options{})

	resp, err := http.Get(srv.URL + "/subtitles.vtt")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestGetSubtitle_ErrorStatus(t *testing.T) {
	const src = "https://subs.example.com/ep1.srt"

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid source", &apperrors.ErrInvalidSource{SourceID: src, Reason: "missing host"}, http.StatusBadRequest},
		{"not found", apperrors.NewRetrievalError(src, http.StatusNotFound, &apperrors.ErrSubtitleResourceNotFound{URL: src}), http.StatusNotFound},
		{"empty archive", &apperrors.ErrNoSubtitleInArchive{Archive: src}, http.StatusNotFound},
		{"upstream failure", apperrors.NewRetrievalError(src, http.StatusServiceUnavailable, nil), http.StatusBadGateway},
		{"unreachable", apperrors.NewRetrievalError(src, 0, errors.New("connection refused")), http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"decode", &apperrors.DecodeError{Reason: "no input"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPipeline{
				getSubtitleFunc: func(ctx context.Context, sourceID string) (*models.ConvertedDocument, error) {
					return nil, tt.err
				},
			}
			srv := newTestServer(t, mock, Options{})

			resp, err := http.Get(subtitleURL(srv.URL, src))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestClearCache(t *testing.T) {
	mock := &mockPipeline{}
	srv := newTestServer(t, mock, Options{})

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/cache", nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	if mock.clearCalls != 1 {
		t.Errorf("Expected ClearCache to be called once, got %d", mock.clearCalls)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, Options{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != `{"status":"ok"}` {
		t.Errorf("Unexpected health response %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Metrics request failed: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "subtitle_dropped_blocks_total") {
		t.Error("Expected pipeline metrics in /metrics output")
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &mockPipeline{}, Options{AllowedOrigins: []string{"https://player.example.com"}})

	req, err := http.NewRequest(http.MethodGet, subtitleURL(srv.URL, "https://subs.example.com/a.srt"), nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Origin", "https://player.example.com")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://player.example.com" {
		t.Errorf("Expected allowed origin to be echoed, got %q", got)
	}

	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for unknown origin, got %q", got)
	}
}

func TestNewServer_DefaultPort(t *testing.T) {
	srv := NewServer("127.0.0.1", 0, &mockPipeline{}, Options{})
	if srv.Addr != "127.0.0.1:8081" {
		t.Errorf("Expected default address 127.0.0.1:8081, got %s", srv.Addr)
	}
}
