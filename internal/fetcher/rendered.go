package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// Default overall budget for one rendered fetch, launch to teardown
	defaultRenderedTimeout = 60 * time.Second
	defaultNavigateTimeout = 20 * time.Second
	defaultReadyTimeout    = 10 * time.Second

	// readySelector marks the point where the page scripts have rendered the price tables
	readySelector = "table"

	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// RenderedFetcher loads a page in a headless browser and returns the DOM
// after client-side scripts have run. Every call owns its own browser
// process, which is torn down before FetchText returns.
type RenderedFetcher struct {
	noSandbox       bool
	browserPath     string
	timeout         time.Duration
	navigateTimeout time.Duration
	readyTimeout    time.Duration
}

// NewRenderedFetcher creates a new browser-backed fetcher
func NewRenderedFetcher(noSandbox bool, browserPath string) *RenderedFetcher {
	return &RenderedFetcher{
		noSandbox:       noSandbox,
		browserPath:     browserPath,
		timeout:         defaultRenderedTimeout,
		navigateTimeout: defaultNavigateTimeout,
		readyTimeout:    defaultReadyTimeout,
	}
}

// WithTimeout overrides the overall budget of a fetch
func (f *RenderedFetcher) WithTimeout(d time.Duration) *RenderedFetcher {
	f.timeout = d
	return f
}

// Mode implements TextFetcher
func (f *RenderedFetcher) Mode() Mode {
	return ModeRendered
}

// FetchText launches the browser, renders url and returns the resulting HTML.
// When the ready selector never shows up the DOM is returned as is, leaving
// the missing markup for the caller to report.
func (f *RenderedFetcher) FetchText(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	session, err := f.open(ctx)
	if err != nil {
		return "", ClassifyTransportError(err).withURL(url)
	}
	defer session.close()

	return session.render(ctx, url, f.navigateTimeout, f.readyTimeout)
}

// browserSession is a launched browser process plus an isolated context
type browserSession struct {
	launcher *launcher.Launcher
	launched bool
	browser  *rod.Browser
	isolated *rod.Browser
}

func (f *RenderedFetcher) open(ctx context.Context) (*browserSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		Leakless(true)
	if f.noSandbox {
		l = l.NoSandbox(true)
	}
	if f.browserPath != "" {
		l = l.Bin(f.browserPath)
	}

	sess := &browserSession{launcher: l}
	ok := false
	defer func() {
		if !ok {
			sess.close()
		}
	}()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	sess.launched = true

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	sess.browser = browser

	isolated, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	sess.isolated = isolated

	ok = true
	return sess, nil
}

func (s *browserSession) render(ctx context.Context, url string, navigateTimeout, readyTimeout time.Duration) (string, error) {
	page, err := s.isolated.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", NewNetworkError(fmt.Errorf("open page: %w", err)).withURL(url)
	}
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: browserUserAgent}); err != nil {
		return "", NewNetworkError(fmt.Errorf("set user agent: %w", err)).withURL(url)
	}

	start := time.Now()
	if err := page.Timeout(navigateTimeout).Navigate(url); err != nil {
		return "", ClassifyTransportError(err).withURL(url)
	}

	if _, err := page.Timeout(readyTimeout).Element(readySelector); err != nil {
		if ctx.Err() != nil {
			fe := ClassifyTransportError(ctx.Err())
			fe.Message = fmt.Sprintf("%s: waiting for %q", fe.Message, readySelector)
			return "", fe.withURL(url)
		}
		slog.Debug("ready selector not found, returning DOM as rendered",
			"url", url,
			"selector", readySelector,
			"error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", ClassifyTransportError(fmt.Errorf("read rendered DOM: %w", err)).withURL(url)
	}

	slog.Debug("rendered fetch completed",
		"url", url,
		"bytes", len(html),
		"duration", time.Since(start))

	return html, nil
}

// close releases the browser context, the browser and its process.
// Safe to call on a nil or partially opened session.
func (s *browserSession) close() {
	if s == nil {
		return
	}
	if s.isolated != nil {
		if err := s.isolated.Close(); err != nil {
			slog.Debug("closing browser context failed", "error", err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Debug("closing browser failed", "error", err)
		}
	}
	// Cleanup waits for the process to exit, so it only applies once launched
	if s.launcher != nil && s.launched {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
}
