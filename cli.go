package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"hargaemas/internal/config"
	"hargaemas/internal/coordinator"
	"hargaemas/internal/emasnow"
	"hargaemas/internal/fetcher"
	"hargaemas/internal/goemas"
	"hargaemas/internal/iloveemas"
	"hargaemas/internal/metrics"
	"hargaemas/internal/rajaemas"
	"hargaemas/internal/ratelimit"
	"hargaemas/internal/report"
	"hargaemas/internal/server"
	"hargaemas/internal/source"
)

// aggregationTimeout bounds a whole generate run
const aggregationTimeout = 90 * time.Second

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "hargaemas",
		Short:        "hargaemas collects gold prices from Indonesian dealers.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogging(cfg.LogLevel)
			return nil
		},
	}

	generate := &cobra.Command{
		Use:   "generate [--out <path/to/index.html>]",
		Short: "Aggregates every source once and writes the HTML report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out, _ := cmd.Flags().GetString("out"); out != "" {
				cfg.OutputPath = out
			}
			return runGenerate(cmd.Context(), cfg)
		},
	}
	generate.Flags().String("out", "", "Report output path, overrides OUTPUT_PATH.")

	serve := &cobra.Command{
		Use:   "serve [--addr <host:port>]",
		Short: "Serves fresh aggregations over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.ListenAddr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().String("addr", "", "Listen address, overrides LISTEN_ADDR.")

	root.AddCommand(generate, serve)
	return root
}

func setupLogging(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// newAdapters wires each source to the transport it needs. rajaEmas is the
// only source whose tables are filled in client-side.
func newAdapters(cfg *config.Config, plain, rendered fetcher.TextFetcher) []source.Adapter {
	return []source.Adapter{
		rajaemas.New(rendered, cfg.RajaEmasURL),
		iloveemas.New(plain, cfg.ILoveEmasURL),
		goemas.New(plain, cfg.GoEmasURL),
		emasnow.New(plain, cfg.EmasNowURL),
	}
}

func newFetchers(cfg *config.Config) (plain, rendered fetcher.TextFetcher, err error) {
	plain, err = fetcher.New(fetcher.ModePlain)
	if err != nil {
		return nil, nil, err
	}
	rendered, err = fetcher.New(fetcher.ModeRendered,
		fetcher.WithNoSandbox(cfg.BrowserNoSandbox),
		fetcher.WithBrowserPath(cfg.BrowserPath),
	)
	if err != nil {
		return nil, nil, err
	}
	return plain, rendered, nil
}

func runGenerate(ctx context.Context, cfg *config.Config) error {
	plain, rendered, err := newFetchers(cfg)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	coord := coordinator.New(newAdapters(cfg, plain, rendered))
	return generateReport(ctx, coord, cfg.OutputPath, time.Now(), loc)
}

// generateReport runs one aggregation and writes the rendered page to path.
// Source failures end up in the page; only I/O problems are returned.
func generateReport(ctx context.Context, coord *coordinator.Coordinator, path string, now time.Time, loc *time.Location) error {
	slog.Info("scraping all sources")

	fetchCtx, cancel := context.WithTimeout(ctx, aggregationTimeout)
	defer cancel()

	agg := coord.Run(fetchCtx)

	succeeded, _ := agg.Counts()
	slog.Info(fmt.Sprintf("%d/%d sources succeeded", succeeded, len(source.AllIDs)))

	var buf bytes.Buffer
	if err := report.Render(&buf, agg, now, loc); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	slog.Info("generated report", "path", path, "updated", now.In(loc).Format(report.TimestampLayout))
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	plain, rendered, err := newFetchers(cfg)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	recorder := metrics.New()
	coord := coordinator.New(newAdapters(cfg, plain, rendered), coordinator.WithRecorder(recorder))
	srv := server.New(coord,
		server.WithLocation(loc),
		server.WithMetrics(recorder.Handler()),
		server.WithLimiter(ratelimit.New(cfg.AggregationsPerMinute, cfg.AggregationBurst)),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("received interrupt signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
