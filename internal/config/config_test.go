package config

import (
	"strings"
	"testing"

	"hargaemas/internal/emasnow"
	"hargaemas/internal/goemas"
	"hargaemas/internal/iloveemas"
	"hargaemas/internal/rajaemas"
)

var allVars = []string{
	"RAJAEMAS_URL",
	"ILOVEEMAS_URL",
	"GOEMAS_URL",
	"EMASNOW_URL",
	"OUTPUT_PATH",
	"LISTEN_ADDR",
	"TIMEZONE",
	"AGGREGATIONS_PER_MINUTE",
	"AGGREGATION_BURST",
	"BROWSER_NO_SANDBOX",
	"BROWSER_PATH",
	"LOG_LEVEL",
	"CI",
}

// clearEnv blanks every recognised variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"RAJAEMAS_URL":       "http://127.0.0.1:9001/",
		"ILOVEEMAS_URL":      "http://127.0.0.1:9002/harga/",
		"GOEMAS_URL":         "http://127.0.0.1:9003/",
		"EMASNOW_URL":        "http://127.0.0.1:9004/harga-emas.json",
		"OUTPUT_PATH":        "/tmp/out/index.html",
		"LISTEN_ADDR":        "127.0.0.1:8080",
		"TIMEZONE":           "Asia/Jakarta",
		"BROWSER_NO_SANDBOX": "true",
		"LOG_LEVEL":          "DEBUG",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"RajaEmasURL", cfg.RajaEmasURL, "http://127.0.0.1:9001/"},
		{"ILoveEmasURL", cfg.ILoveEmasURL, "http://127.0.0.1:9002/harga/"},
		{"GoEmasURL", cfg.GoEmasURL, "http://127.0.0.1:9003/"},
		{"EmasNowURL", cfg.EmasNowURL, "http://127.0.0.1:9004/harga-emas.json"},
		{"OutputPath", cfg.OutputPath, "/tmp/out/index.html"},
		{"ListenAddr", cfg.ListenAddr, "127.0.0.1:8080"},
		{"Timezone", cfg.Timezone, "Asia/Jakarta"},
		{"LogLevel", cfg.LogLevel, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}

	if !cfg.BrowserNoSandbox {
		t.Error("BrowserNoSandbox = false, want true")
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"RajaEmasURL", cfg.RajaEmasURL, rajaemas.DefaultURL},
		{"ILoveEmasURL", cfg.ILoveEmasURL, iloveemas.DefaultURL},
		{"GoEmasURL", cfg.GoEmasURL, goemas.DefaultURL},
		{"EmasNowURL", cfg.EmasNowURL, emasnow.DefaultURL},
		{"OutputPath", cfg.OutputPath, "docs/index.html"},
		{"ListenAddr", cfg.ListenAddr, ":3000"},
		{"Timezone", cfg.Timezone, "Asia/Makassar"},
		{"LogLevel", cfg.LogLevel, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}

	if cfg.BrowserNoSandbox {
		t.Error("BrowserNoSandbox = true, want false by default")
	}
	if cfg.AggregationsPerMinute != 30 || cfg.AggregationBurst != 5 {
		t.Errorf("aggregation budget = %d/min burst %d, want 30/min burst 5", cfg.AggregationsPerMinute, cfg.AggregationBurst)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() returned unexpected error: %v", err)
	}
	if loc.String() != "Asia/Makassar" {
		t.Errorf("Location() = %q, want Asia/Makassar", loc.String())
	}
}

func TestLoad_CIDisablesSandbox(t *testing.T) {
	clearEnv(t)
	t.Setenv("CI", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.BrowserNoSandbox {
		t.Error("BrowserNoSandbox = false with CI set, want true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    map[string]string
		wantErrText string
	}{
		{
			name:        "bad source url",
			setupEnv:    map[string]string{"GOEMAS_URL": "not a url"},
			wantErrText: "GoEmasURL",
		},
		{
			name:        "unknown log level",
			setupEnv:    map[string]string{"LOG_LEVEL": "verbose"},
			wantErrText: "LogLevel",
		},
		{
			name:        "unknown timezone",
			setupEnv:    map[string]string{"TIMEZONE": "Mars/Olympus"},
			wantErrText: "unknown timezone",
		},
		{
			name:        "zero burst",
			setupEnv:    map[string]string{"AGGREGATION_BURST": "0"},
			wantErrText: "AggregationBurst",
		},
		{
			name:        "missing browser binary",
			setupEnv:    map[string]string{"BROWSER_PATH": "/nonexistent/chromium"},
			wantErrText: "BrowserPath",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.setupEnv {
				t.Setenv(key, value)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}

			if !strings.Contains(err.Error(), tt.wantErrText) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrText)
			}
		})
	}
}
