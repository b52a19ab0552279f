// Package logging builds the process logger and lets it be reconfigured
// while running.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Console destinations.
const (
	ConsoleStdout = "stdout"
	ConsoleStderr = "stderr"
)

// Config describes the desired logging configuration.
type Config struct {
	Level          string `json:"level" yaml:"level"`
	Format         string `json:"format" yaml:"format"`
	Console        string `json:"console,omitempty" yaml:"console"`
	FilePath       string `json:"file_path,omitempty" yaml:"file_path"`
	FileMaxSizeMB  int    `json:"file_max_size_mb,omitempty" yaml:"file_max_size_mb"`
	FileMaxFiles   int    `json:"file_max_files,omitempty" yaml:"file_max_files"`
	FileMaxAgeDays int    `json:"file_max_age_days,omitempty" yaml:"file_max_age_days"`
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         "json",
		Console:        ConsoleStdout,
		FileMaxSizeMB:  100,
		FileMaxFiles:   3,
		FileMaxAgeDays: 30,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !ValidLevel(c.Level) {
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.Level)
	}
	if !ValidFormat(c.Format) {
		return fmt.Errorf("invalid log format %q (want text or json)", c.Format)
	}
	switch c.Console {
	case "", ConsoleStdout, ConsoleStderr:
	default:
		return fmt.Errorf("invalid log console %q (want stdout or stderr)", c.Console)
	}
	if c.FileMaxSizeMB < 0 || c.FileMaxFiles < 0 || c.FileMaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

// String returns a human-readable summary of the config.
func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		s += fmt.Sprintf(" file=%s max_size=%dMB max_files=%d max_age=%dd",
			c.FilePath, c.FileMaxSizeMB, c.FileMaxFiles, c.FileMaxAgeDays)
	}
	return s
}

// SwappableHandler is a slog.Handler whose inner handler can be replaced
// at runtime. Loggers derived with With keep following swaps.
type SwappableHandler struct {
	root  *atomic.Pointer[slog.Handler]
	attrs []slog.Attr
	group string
}

// NewSwappableHandler creates a SwappableHandler wrapping h.
func NewSwappableHandler(h slog.Handler) *SwappableHandler {
	p := &atomic.Pointer[slog.Handler]{}
	p.Store(&h)
	return &SwappableHandler{root: p}
}

// Swap replaces the inner handler for this handler and every handler
// derived from it.
func (s *SwappableHandler) Swap(h slog.Handler) {
	s.root.Store(&h)
}

func (s *SwappableHandler) current() slog.Handler {
	h := *s.root.Load()
	if s.group != "" {
		h = h.WithGroup(s.group)
	}
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	return h
}

// Enabled delegates to the inner handler.
func (s *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*s.root.Load()).Enabled(ctx, level)
}

// Handle delegates to the inner handler.
func (s *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.current().Handle(ctx, r)
}

// WithAttrs returns a derived handler carrying attrs.
func (s *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(merged, s.attrs...)
	merged = append(merged, attrs...)
	return &SwappableHandler{root: s.root, attrs: merged, group: s.group}
}

// WithGroup returns a derived handler with the group. Only one level of
// grouping is kept, which is all this program uses.
func (s *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return &SwappableHandler{root: s.root, attrs: s.attrs, group: name}
}

// Manager owns the logger lifecycle and supports runtime reconfiguration.
type Manager struct {
	levelVar *slog.LevelVar
	handler  *SwappableHandler
	config   Config
	mu       sync.Mutex
	closer   io.Closer // lumberjack writer, if any
}

// NewManager creates a Manager and returns it along with a ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	lvl := &slog.LevelVar{}
	lvl.Set(parseLevel(cfg.Level))

	writer, closer := buildWriter(cfg)
	handler := NewSwappableHandler(buildHandler(writer, lvl, cfg.Format))

	m := &Manager{
		levelVar: lvl,
		handler:  handler,
		config:   cfg,
		closer:   closer,
	}
	return m, slog.New(handler)
}

// Reconfigure applies a new configuration at runtime. Level-only changes
// are instant via LevelVar; format or output changes rebuild the handler.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levelVar.Set(parseLevel(cfg.Level))

	needSwap := cfg.Format != m.config.Format ||
		cfg.Console != m.config.Console ||
		cfg.FilePath != m.config.FilePath ||
		cfg.FileMaxSizeMB != m.config.FileMaxSizeMB ||
		cfg.FileMaxFiles != m.config.FileMaxFiles ||
		cfg.FileMaxAgeDays != m.config.FileMaxAgeDays

	if needSwap {
		if m.closer != nil {
			m.closer.Close() //nolint:errcheck
			m.closer = nil
		}
		writer, closer := buildWriter(cfg)
		m.handler.Swap(buildHandler(writer, m.levelVar, cfg.Format))
		m.closer = closer
	}

	m.config = cfg
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file writer, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer != nil {
		err := m.closer.Close()
		m.closer = nil
		return err
	}
	return nil
}

// parseLevel converts a string to slog.Level, defaulting to Info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatLevel converts a slog.Level to its string name.
func FormatLevel(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

func console(name string) io.Writer {
	if name == ConsoleStderr {
		return os.Stderr
	}
	return os.Stdout
}

// buildWriter returns the console writer, teed into a rotating file when a
// file path is configured. The closer is the file writer.
func buildWriter(cfg Config) (io.Writer, io.Closer) {
	out := console(cfg.Console)
	if cfg.FilePath == "" {
		return out, nil
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.FileMaxSizeMB, 100),
		MaxBackups: orDefault(cfg.FileMaxFiles, 3),
		MaxAge:     orDefault(cfg.FileMaxAgeDays, 30),
	}
	return io.MultiWriter(out, lj), lj
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func buildHandler(w io.Writer, leveler slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: leveler}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ValidLevel returns true if s is a recognized log level.
func ValidLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat returns true if s is a recognized log format.
func ValidFormat(s string) bool {
	switch s {
	case "text", "json":
		return true
	}
	return false
}
