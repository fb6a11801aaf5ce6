package testutil

import (
	"context"
	"sync/atomic"

	"hargaemas/internal/fetcher"
	"hargaemas/internal/source"
)

// MockAdapter is a mock implementation of the source.Adapter interface for testing
type MockAdapter struct {
	IDFunc    func() source.ID
	FetchFunc func(ctx context.Context) (source.Prices, error)
}

// ID implements the source.Adapter interface
func (m *MockAdapter) ID() source.ID {
	if m.IDFunc != nil {
		return m.IDFunc()
	}
	return source.RajaEmas
}

// FetchAndExtract implements the source.Adapter interface
func (m *MockAdapter) FetchAndExtract(ctx context.Context) (source.Prices, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return source.Prices{}, nil
}

// NewMockAdapter creates a simple mock adapter with predefined values
func NewMockAdapter(id source.ID, prices source.Prices, err error) source.Adapter {
	return &MockAdapter{
		IDFunc: func() source.ID {
			return id
		},
		FetchFunc: func(ctx context.Context) (source.Prices, error) {
			return prices, err
		},
	}
}

// StubFetcher is a fetcher.TextFetcher that serves a canned body
type StubFetcher struct {
	Body      string
	Err       error
	FetchMode fetcher.Mode

	calls   atomic.Int32
	lastURL atomic.Value
}

// FetchText implements the fetcher.TextFetcher interface
func (s *StubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	s.calls.Add(1)
	s.lastURL.Store(url)
	if err := ctx.Err(); err != nil {
		return "", fetcher.ClassifyTransportError(err)
	}
	return s.Body, s.Err
}

// Mode implements the fetcher.TextFetcher interface
func (s *StubFetcher) Mode() fetcher.Mode {
	if s.FetchMode == "" {
		return fetcher.ModePlain
	}
	return s.FetchMode
}

// Calls returns how many times FetchText was invoked
func (s *StubFetcher) Calls() int {
	return int(s.calls.Load())
}

// LastURL returns the URL of the most recent FetchText call
func (s *StubFetcher) LastURL() string {
	v, _ := s.lastURL.Load().(string)
	return v
}
