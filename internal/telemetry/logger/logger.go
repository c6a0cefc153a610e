package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface used across the guard.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config selects the handler and the attributes stamped on every entry.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // json (default) or text
	Output io.Writer // defaults to os.Stderr

	// Attrs are key/value pairs added to every entry, e.g. "service", "csrfguard-server".
	Attrs []any
}

// level is shared by every logger in the process so a config reload can
// change verbosity without rebuilding handlers.
var level = new(slog.LevelVar)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

type entryLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

// New builds a redacting logger. An empty level means info.
func New(cfg Config) (Logger, error) {
	if cfg.Level != "" && !ValidLevel(cfg.Level) {
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}
	level.Set(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	if f := strings.ToLower(cfg.Format); f == "text" || f == "console" {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	sl := slog.New(h)
	if len(cfg.Attrs) > 0 {
		sl = sl.With(cfg.Attrs...)
	}
	return &entryLogger{sl: sl, ctx: context.Background()}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &entryLogger{sl: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})), ctx: context.Background()}
}

// SetLevel changes the process-wide level. Unknown names mean info.
func SetLevel(name string) {
	level.Set(parseLevel(name))
}

// GetLevel returns the current process-wide level name.
func GetLevel() string {
	switch l := level.Level(); {
	case l <= slog.LevelDebug:
		return "debug"
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	}
	return "info"
}

// ValidLevel reports whether name is an accepted level.
func ValidLevel(name string) bool {
	_, ok := levels[strings.ToLower(name)]
	return ok
}

func parseLevel(name string) slog.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return slog.LevelInfo
}

func (l *entryLogger) Debug(msg string, args ...any) { l.sl.DebugContext(l.ctx, msg, args...) }
func (l *entryLogger) Info(msg string, args ...any)  { l.sl.InfoContext(l.ctx, msg, args...) }
func (l *entryLogger) Warn(msg string, args ...any)  { l.sl.WarnContext(l.ctx, msg, args...) }
func (l *entryLogger) Error(msg string, args ...any) { l.sl.ErrorContext(l.ctx, msg, args...) }

func (l *entryLogger) With(args ...any) Logger {
	return &entryLogger{sl: l.sl.With(args...), ctx: l.ctx}
}

func (l *entryLogger) WithContext(ctx context.Context) Logger {
	return &entryLogger{sl: l.sl, ctx: ctx}
}

var defaultLogger atomic.Pointer[entryLogger]

func init() {
	l, _ := New(Config{})
	defaultLogger.Store(l.(*entryLogger))
}

// SetDefault installs l as the process default. Loggers from other
// implementations are ignored.
func SetDefault(l Logger) {
	if el, ok := l.(*entryLogger); ok {
		defaultLogger.Store(el)
	}
}

// Default returns the process default logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Slog exposes the *slog.Logger behind l for libraries that take one.
func Slog(l Logger) *slog.Logger {
	if el, ok := l.(*entryLogger); ok {
		return el.sl
	}
	return slog.Default()
}
