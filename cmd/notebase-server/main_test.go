package main

import (
	"bytes"
	"flag"
	"os"
	"strings"
	"testing"
)

var configEnvVars = []string{
	"NOTEBASE_ADDR",
	"NOTEBASE_LOG_LEVEL",
	"NOTEBASE_SNAPSHOT_DIR",
	"NOTEBASE_FRAME_INTERVAL_MS",
	"NOTEBASE_SEED",
	"NOTEBASE_ALLOWED_ORIGIN",
	"GEMINI_API_KEY",
	"NOTEBASE_GEMINI_MODEL",
	"NOTEBASE_GEMINI_BASE_URL",
}

// resetConfig clears the config env vars and flag state for one test
func resetConfig(t *testing.T, args ...string) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	origArgs := os.Args
	origFlags := flag.CommandLine
	t.Cleanup(func() {
		os.Args = origArgs
		flag.CommandLine = origFlags
	})

	flag.CommandLine = flag.NewFlagSet("notebase-server", flag.ContinueOnError)
	os.Args = append([]string{"notebase-server"}, args...)
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	resetConfig(t)

	cfg := loadServerConfig()

	if cfg.Addr != ":8080" {
		t.Errorf("Expected Addr to be ':8080', got '%s'", cfg.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.SnapshotDir != "./data" {
		t.Errorf("Expected SnapshotDir to be './data', got '%s'", cfg.SnapshotDir)
	}
	if cfg.FrameIntervalMs != 16 {
		t.Errorf("Expected FrameIntervalMs to be 16, got %d", cfg.FrameIntervalMs)
	}
	if cfg.Seeded {
		t.Errorf("Expected unseeded config, got seed %d", cfg.Seed)
	}
	if cfg.AllowedOrigin != "*" {
		t.Errorf("Expected AllowedOrigin to be '*', got '%s'", cfg.AllowedOrigin)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("Expected no API key, got '%s'", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("Expected default model, got '%s'", cfg.GeminiModel)
	}
}

func TestLoadServerConfig_EnvVars(t *testing.T) {
	resetConfig(t)
	t.Setenv("NOTEBASE_ADDR", ":9090")
	t.Setenv("NOTEBASE_SNAPSHOT_DIR", "/tmp/snaps")
	t.Setenv("NOTEBASE_FRAME_INTERVAL_MS", "40")
	t.Setenv("NOTEBASE_SEED", "42")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg := loadServerConfig()

	if cfg.Addr != ":9090" {
		t.Errorf("Expected Addr to be ':9090', got '%s'", cfg.Addr)
	}
	if cfg.SnapshotDir != "/tmp/snaps" {
		t.Errorf("Expected SnapshotDir to be '/tmp/snaps', got '%s'", cfg.SnapshotDir)
	}
	if cfg.FrameIntervalMs != 40 {
		t.Errorf("Expected FrameIntervalMs to be 40, got %d", cfg.FrameIntervalMs)
	}
	if !cfg.Seeded || cfg.Seed != 42 {
		t.Errorf("Expected seed 42, got seeded=%v seed=%d", cfg.Seeded, cfg.Seed)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("Expected API key from env, got '%s'", cfg.GeminiAPIKey)
	}
}

func TestLoadServerConfig_FlagsOverrideEnvVars(t *testing.T) {
	resetConfig(t, "-addr", ":7070", "-log-level", "debug", "-frame-interval-ms", "100")
	t.Setenv("NOTEBASE_ADDR", ":9090")
	t.Setenv("NOTEBASE_LOG_LEVEL", "error")

	cfg := loadServerConfig()

	if cfg.Addr != ":7070" {
		t.Errorf("Expected flag to win, got '%s'", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel 'debug', got '%s'", cfg.LogLevel)
	}
	if cfg.FrameIntervalMs != 100 {
		t.Errorf("Expected FrameIntervalMs 100, got %d", cfg.FrameIntervalMs)
	}
}

func TestLoadServerConfig_InvalidValues(t *testing.T) {
	resetConfig(t)
	t.Setenv("NOTEBASE_FRAME_INTERVAL_MS", "fast")
	t.Setenv("NOTEBASE_SEED", "-1")

	cfg := loadServerConfig()

	// Should fall back to defaults when invalid values are provided
	if cfg.FrameIntervalMs != defaultFrameIntervalMs {
		t.Errorf("Expected default FrameIntervalMs, got %d", cfg.FrameIntervalMs)
	}
	if cfg.Seeded {
		t.Error("Expected invalid seed to be ignored")
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"debug", []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"}, nil},
		{"info", []string{"[INFO]", "[WARN]", "[ERROR]"}, []string{"[DEBUG]"}},
		{"warn", []string{"[WARN]", "[ERROR]"}, []string{"[DEBUG]", "[INFO]"}},
		{"error", []string{"[ERROR]"}, []string{"[DEBUG]", "[INFO]", "[WARN]"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(tt.level, &buf)
			logger.Debugf("debug message")
			logger.Infof("info message")
			logger.Warnf("warn message")
			logger.Errorf("error message")

			out := buf.String()
			for _, want := range tt.visible {
				if !strings.Contains(out, want) {
					t.Errorf("Expected %s in output:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.hidden {
				if strings.Contains(out, unwanted) {
					t.Errorf("Did not expect %s in output:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"DEBUG":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"Warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"ERROR":   LogLevelError,
		"invalid": LogLevelInfo,
		"":        LogLevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}
