package testutil

import (
	"bytes"
	"context"
	"sync"

	"github.com/Belphemur/vttbridge/internal/models"
)

// FetchResult is a canned response for StubFetcher
type FetchResult struct {
	Raw *models.RawSubtitle
	Err error
}

// StubFetcher serves canned responses by source identifier and counts calls.
// Unknown sources return an empty RawSubtitle.
type StubFetcher struct {
	mu      sync.Mutex
	results map[string]FetchResult
	calls   map[string]int
}

// NewStubFetcher creates a StubFetcher with the given responses
func NewStubFetcher(results map[string]FetchResult) *StubFetcher {
	return &StubFetcher{
		results: results,
		calls:   make(map[string]int),
	}
}

// FetchSubtitle records the call and returns the canned response for sourceID
func (f *StubFetcher) FetchSubtitle(ctx context.Context, sourceID string) (*models.RawSubtitle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[sourceID]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, ok := f.results[sourceID]
	if !ok {
		return &models.RawSubtitle{SourceID: sourceID, Content: []byte{}}, nil
	}
	if result.Err != nil {
		return nil, result.Err
	}
	raw := *result.Raw
	raw.Content = bytes.Clone(result.Raw.Content)
	return &raw, nil
}

// Calls returns how many times sourceID was fetched
func (f *StubFetcher) Calls(sourceID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sourceID]
}

// Close is a no-op so StubFetcher also satisfies client.Client
func (f *StubFetcher) Close() error {
	return nil
}
