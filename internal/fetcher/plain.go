package fetcher

import (
	"context"
	"log/slog"
	"time"

	"resty.dev/v3"
)

const (
	// Default plain request configuration
	defaultPlainTimeout = 30 * time.Second

	// Several sources drop requests carrying browser-like headers at their
	// firewall. A bare command-line client signature is what gets through.
	plainUserAgent = "curl/8.5.0"
)

// PlainFetcher retrieves pages with a single unembellished HTTP GET.
type PlainFetcher struct {
	client  *resty.Client
	timeout time.Duration
}

// NewPlainFetcher creates a new plain HTTP fetcher without retries
func NewPlainFetcher() *PlainFetcher {
	client := resty.New().
		SetHeader("User-Agent", plainUserAgent).
		SetHeader("Accept", "*/*").
		SetRetryCount(0)

	return &PlainFetcher{
		client:  client,
		timeout: defaultPlainTimeout,
	}
}

// WithTimeout overrides the request timeout
func (f *PlainFetcher) WithTimeout(d time.Duration) *PlainFetcher {
	f.timeout = d
	return f
}

// Mode implements TextFetcher
func (f *PlainFetcher) Mode() Mode {
	return ModePlain
}

// FetchText performs the request and returns the body as text
func (f *PlainFetcher) FetchText(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		return "", ClassifyTransportError(err).withURL(url)
	}

	slog.Debug("plain fetch completed",
		"url", url,
		"status_code", resp.StatusCode(),
		"duration", time.Since(start))

	if !resp.IsSuccess() {
		return "", ClassifyHTTPError(resp.StatusCode()).withURL(url)
	}

	body := resp.String()
	if body == "" {
		return "", NewEmptyBodyError().withURL(url)
	}

	return body, nil
}
