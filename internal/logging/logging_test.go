package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewManager_DefaultConfig(t *testing.T) {
	mgr, logger := NewManager(DefaultConfig())
	defer mgr.Close() //nolint:errcheck

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if mgr.Config().Level != "info" || mgr.Config().Format != "json" {
		t.Errorf("unexpected defaults: %s", mgr.Config())
	}
}

func TestManager_LevelSwap(t *testing.T) {
	mgr, logger := NewManager(Config{Level: "info", Format: "json", Console: ConsoleStderr})
	defer mgr.Close() //nolint:errcheck
	component := logger.With(slog.String("component", "merge"))

	if component.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled")
	}

	mgr.Reconfigure(Config{Level: "debug", Format: "json", Console: ConsoleStderr})
	if !component.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("derived logger did not follow the level change")
	}

	mgr.Reconfigure(Config{Level: "error", Format: "json", Console: ConsoleStderr})
	if component.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled when level is error")
	}
}

func TestSwappableHandler_DerivedFollowsSwap(t *testing.T) {
	var first, second bytes.Buffer
	h := NewSwappableHandler(slog.NewTextHandler(&first, nil))
	logger := slog.New(h).With(slog.String("component", "dedupe"))

	logger.Info("before")
	h.Swap(slog.NewJSONHandler(&second, nil))
	logger.Info("after")

	if !strings.Contains(first.String(), "component=dedupe") || !strings.Contains(first.String(), "before") {
		t.Errorf("first handler output = %q", first.String())
	}
	if !strings.Contains(second.String(), `"component":"dedupe"`) || !strings.Contains(second.String(), "after") {
		t.Errorf("second handler output = %q", second.String())
	}
}

func TestManager_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "crate.log")

	mgr, logger := NewManager(Config{
		Level:          "info",
		Format:         "json",
		Console:        ConsoleStderr,
		FilePath:       logFile,
		FileMaxSizeMB:  1,
		FileMaxFiles:   1,
		FileMaxAgeDays: 1,
	})
	logger.Info("hello from test")

	if err := mgr.Close(); err != nil {
		t.Fatalf("closing manager: %v", err)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file = %q", data)
	}
}

func TestManager_CloseIdempotent(t *testing.T) {
	mgr, _ := NewManager(DefaultConfig())
	if err := mgr.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"bad level", Config{Level: "trace", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
		{"bad console", Config{Level: "info", Format: "text", Console: "syslog"}, true},
		{"negative rotation", Config{Level: "info", Format: "text", FileMaxFiles: -1}, true},
		{"stderr", Config{Level: "warn", Format: "text", Console: ConsoleStderr}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in  string
		out slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.out {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestFormatLevel(t *testing.T) {
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if got := parseLevel(FormatLevel(l)); got != l {
			t.Errorf("round trip of %v gave %v", l, got)
		}
	}
}

func TestConfig_String(t *testing.T) {
	cfg := Config{Level: "info", Format: "json"}
	if s := cfg.String(); s != "level=info format=json" {
		t.Errorf("unexpected string: %s", s)
	}

	cfg.FilePath = "/var/log/crate.log"
	cfg.FileMaxSizeMB = 50
	cfg.FileMaxFiles = 5
	cfg.FileMaxAgeDays = 7
	want := "level=info format=json file=/var/log/crate.log max_size=50MB max_files=5 max_age=7d"
	if s := cfg.String(); s != want {
		t.Errorf("got %q, want %q", s, want)
	}
}
