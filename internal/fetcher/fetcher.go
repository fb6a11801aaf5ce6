package fetcher

import (
	"context"
	"fmt"
)

// Mode selects how a page is retrieved.
type Mode string

const (
	// ModePlain issues a single bare HTTP GET
	ModePlain Mode = "plain"
	// ModeRendered loads the page in a headless browser and returns the DOM
	// once client-side scripts have populated it
	ModeRendered Mode = "rendered"
)

// TextFetcher is the core interface that all transports implement.
// Adapters depend only on this interface, so they do not know whether the
// page came from a plain request or a browser session.
type TextFetcher interface {
	// FetchText retrieves the fully resolved body at url as text.
	// Returns a *FetchError on network failure, non-2xx status or timeout.
	FetchText(ctx context.Context, url string) (string, error)

	// Mode reports which transport this fetcher uses.
	Mode() Mode
}

// Options holds settings shared by the transports.
type Options struct {
	noSandbox   bool
	browserPath string
}

// Option configures a TextFetcher built by New.
type Option func(*Options)

// WithNoSandbox disables the browser sandbox, which is required inside most CI containers.
func WithNoSandbox(noSandbox bool) Option {
	return func(o *Options) {
		o.noSandbox = noSandbox
	}
}

// WithBrowserPath points the rendered fetcher at a specific browser binary.
func WithBrowserPath(path string) Option {
	return func(o *Options) {
		o.browserPath = path
	}
}

// New creates the TextFetcher for the given mode.
func New(mode Mode, opts ...Option) (TextFetcher, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch mode {
	case ModePlain:
		return NewPlainFetcher(), nil
	case ModeRendered:
		return NewRenderedFetcher(o.noSandbox, o.browserPath), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", mode)
	}
}
