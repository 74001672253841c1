// Package apperrors tests verify the custom error types, their Error()
// messages, Is() matching semantics and compatibility with errors.Is()
// and errors.As() through fmt.Errorf wrapping.
package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// RetrievalError
// ---------------------------------------------------------------------------

func TestRetrievalError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *RetrievalError
		expected string
	}{
		{
			name:     "with status code",
			err:      NewRetrievalError("http://x/a.srt", 500, nil),
			expected: "failed to retrieve subtitle http://x/a.srt: unexpected status code 500",
		},
		{
			name:     "with cause",
			err:      NewRetrievalError("http://x/a.srt", 0, errors.New("connection refused")),
			expected: "failed to retrieve subtitle http://x/a.srt: connection refused",
		},
		{
			name:     "bare",
			err:      NewRetrievalError("http://x/a.srt", 0, nil),
			expected: "failed to retrieve subtitle http://x/a.srt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRetrievalError_IsAndUnwrap(t *testing.T) {
	t.Parallel()
	notFound := &ErrSubtitleResourceNotFound{URL: "http://x/a.srt"}
	err := NewRetrievalError("http://x/a.srt", 404, notFound)
	wrapped := fmt.Errorf("pipeline: %w", err)

	if !errors.Is(wrapped, &RetrievalError{}) {
		t.Error("expected errors.Is to match *RetrievalError through wrapping")
	}
	if !errors.Is(wrapped, &ErrSubtitleResourceNotFound{}) {
		t.Error("expected errors.Is to reach the wrapped *ErrSubtitleResourceNotFound")
	}
	if errors.Is(wrapped, &DecodeError{}) {
		t.Error("expected errors.Is not to match *DecodeError")
	}

	var target *RetrievalError
	if !errors.As(wrapped, &target) {
		t.Fatal("expected errors.As to extract *RetrievalError")
	}
	if target.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", target.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// DecodeError
// ---------------------------------------------------------------------------

func TestDecodeError(t *testing.T) {
	t.Parallel()
	err := &DecodeError{Reason: "no input"}
	if got := err.Error(); got != "failed to decode subtitle: no input" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(fmt.Errorf("wrap: %w", err), &DecodeError{}) {
		t.Error("expected errors.Is to match *DecodeError")
	}
	if errors.Is(err, &RetrievalError{}) {
		t.Error("expected errors.Is not to match *RetrievalError")
	}
}

// ---------------------------------------------------------------------------
// ErrSubtitleResourceNotFound / ErrNoSubtitleInArchive / ErrInvalidSource
// ---------------------------------------------------------------------------

func TestErrSubtitleResourceNotFound(t *testing.T) {
	t.Parallel()
	err := &ErrSubtitleResourceNotFound{URL: "http://example.com/a.srt"}
	if got := err.Error(); got != "subtitle resource not found at URL: http://example.com/a.srt" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, &ErrSubtitleResourceNotFound{URL: "other"}) {
		t.Error("expected match regardless of URL")
	}
}

func TestErrNoSubtitleInArchive(t *testing.T) {
	t.Parallel()
	err := &ErrNoSubtitleInArchive{Archive: "zip", FileCount: 3}
	if got := err.Error(); got != "no subtitle file found in zip archive (searched 3 files)" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(fmt.Errorf("wrap: %w", err), &ErrNoSubtitleInArchive{}) {
		t.Error("expected errors.Is to match through wrapping")
	}
}

func TestErrArchiveEntryTooLarge(t *testing.T) {
	t.Parallel()
	err := &ErrArchiveEntryTooLarge{Archive: "rar", Name: "big.srt", Limit: 16}
	if got := err.Error(); got != "rar entry big.srt exceeds 16 bytes" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(fmt.Errorf("wrap: %w", err), &ErrArchiveEntryTooLarge{}) {
		t.Error("expected errors.Is to match through wrapping")
	}
	if errors.Is(err, &ErrNoSubtitleInArchive{}) {
		t.Error("expected no match against a different archive error")
	}
}

func TestErrInvalidSource(t *testing.T) {
	t.Parallel()
	err := &ErrInvalidSource{SourceID: "ftp://x", Reason: "unsupported scheme"}
	if got := err.Error(); got != `invalid subtitle source "ftp://x": unsupported scheme` {
		t.Errorf("Error() = %q", got)
	}
	if errors.Is(err, &RetrievalError{}) {
		t.Error("expected errors.Is not to match *RetrievalError")
	}
}
