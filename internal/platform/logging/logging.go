package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogRetentionDays = 7
	consoleTimeFmt   = "2006-01-02 15:04:05.000"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
	Format   string // "text" (default) or "json" for console output
}

// Logger writes human readable lines to stdout and JSON lines to a daily
// rotated file. The calling convention is printf when the message carries a
// verb, otherwise the first argument may be a map of structured fields.
type Logger struct {
	config      Config
	console     io.Writer
	level       zerolog.Level
	zl          zerolog.Logger
	logFile     *os.File
	currentDate string
	mu          sync.RWMutex
	ticker      *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
}

// New creates a Logger. An empty Dir disables file output.
func New(cfg Config) (*Logger, error) {
	return newLogger(cfg, os.Stdout)
}

// NewWithWriter is New with the console stream redirected, mostly for tests.
func NewWithWriter(cfg Config, w io.Writer) (*Logger, error) {
	return newLogger(cfg, w)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		console: io.Discard,
		level:   zerolog.Disabled,
		zl:      zerolog.Nop(),
		stopCh:  make(chan struct{}),
	}
}

func newLogger(cfg Config, console io.Writer) (*Logger, error) {
	l := &Logger{
		config:      cfg,
		console:     console,
		level:       parseLevel(cfg.Level),
		currentDate: time.Now().Format("2006-01-02"),
		stopCh:      make(chan struct{}),
	}

	if cfg.Dir != "" {
		if cfg.Filename == "" {
			l.config.Filename = "server.log"
		}
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(l.logPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.logFile = file
	}

	l.rebuild()
	if l.logFile != nil {
		l.startRotationChecker()
	}
	return l, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// rebuild must run with mu held or before the logger is shared.
func (l *Logger) rebuild() {
	var console io.Writer = l.console
	if !strings.EqualFold(l.config.Format, "json") {
		console = zerolog.ConsoleWriter{Out: l.console, TimeFormat: consoleTimeFmt}
	}

	var out io.Writer = console
	if l.logFile != nil {
		out = zerolog.MultiLevelWriter(console, l.logFile)
	}
	l.zl = zerolog.New(out).Level(l.level).With().Timestamp().Logger()
}

func (l *Logger) logPath() string {
	return filepath.Join(l.config.Dir, l.config.Filename)
}

func (l *Logger) startRotationChecker() {
	l.ticker = time.NewTicker(time.Minute)
	go func() {
		for {
			select {
			case <-l.ticker.C:
				l.checkAndRotate()
			case <-l.stopCh:
				return
			}
		}
	}()
}

func (l *Logger) checkAndRotate() {
	today := time.Now().Format("2006-01-02")
	if today != l.currentDate {
		l.rotateLogFile(today)
		l.cleanOldLogs()
	}
}

// rotateLogFile renames server.log to server-<date>.log and reopens a fresh file.
func (l *Logger) rotateLogFile(newDate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
	}

	ext := filepath.Ext(l.config.Filename)
	base := strings.TrimSuffix(l.config.Filename, ext)
	archived := filepath.Join(l.config.Dir, fmt.Sprintf("%s-%s%s", base, l.currentDate, ext))
	if _, err := os.Stat(l.logPath()); err == nil {
		if err := os.Rename(l.logPath(), archived); err != nil {
			l.zl.Error().Err(err).Msg("rotate log file")
		}
	}

	file, err := os.OpenFile(l.logPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logFile = nil
		l.rebuild()
		l.zl.Error().Err(err).Msg("reopen log file")
		return
	}
	l.logFile = file
	l.currentDate = newDate
	l.rebuild()
	l.zl.Info().Str("new_date", newDate).Msg("log file rotated")
}

func (l *Logger) cleanOldLogs() {
	entries, err := os.ReadDir(l.config.Dir)
	if err != nil {
		l.Error("read log dir: %v", err)
		return
	}

	cutoff := time.Now().AddDate(0, 0, -LogRetentionDays)
	ext := filepath.Ext(l.config.Filename)
	base := strings.TrimSuffix(l.config.Filename, ext)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, base+"-") || !strings.HasSuffix(name, ext) {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, base+"-"), ext))
		if err != nil || !date.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.config.Dir, name)); err != nil {
			l.Error("remove old log %s: %v", name, err)
		}
	}
}

// Close stops rotation and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	var err error
	l.closeOnce.Do(func() {
		if l.ticker != nil {
			l.ticker.Stop()
		}
		close(l.stopCh)

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.logFile != nil {
			err = l.logFile.Close()
			l.logFile = nil
		}
		l.rebuild()
	})
	return err
}

// Zerolog exposes the underlying logger for integrations that want events directly.
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zl
}

func containsFormatPlaceholders(s string) bool {
	return strings.Contains(s, "%")
}

func (l *Logger) log(level zerolog.Level, tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	ev := l.zl.WithLevel(level)
	if ev == nil {
		return
	}
	if tag != "" {
		ev = ev.Str("tag", tag)
		msg = FormatLog(tag, msg)
	}

	if len(args) > 0 && containsFormatPlaceholders(msg) {
		ev.Msg(fmt.Sprintf(msg, args...))
		return
	}
	if len(args) > 0 && args[0] != nil {
		if fields, ok := args[0].(map[string]interface{}); ok {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				ev = ev.Interface(k, fields[k])
			}
		} else {
			ev = ev.Interface("fields", args[0])
		}
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log(zerolog.DebugLevel, "", msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log(zerolog.InfoLevel, "", msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log(zerolog.WarnLevel, "", msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log(zerolog.ErrorLevel, "", msg, args...) }

func (l *Logger) DebugTag(tag, msg string, args ...interface{}) {
	l.log(zerolog.DebugLevel, tag, msg, args...)
}

func (l *Logger) InfoTag(tag, msg string, args ...interface{}) {
	l.log(zerolog.InfoLevel, tag, msg, args...)
}

func (l *Logger) WarnTag(tag, msg string, args ...interface{}) {
	l.log(zerolog.WarnLevel, tag, msg, args...)
}

func (l *Logger) ErrorTag(tag, msg string, args ...interface{}) {
	l.log(zerolog.ErrorLevel, tag, msg, args...)
}

// FormatLog prefixes message with a single category tag: FormatLog("HTTP", "ready") -> "[HTTP] ready".
// Messages that already start with "[" are returned unchanged.
func FormatLog(tag, message string) string {
	tag = strings.TrimSpace(tag)
	message = strings.TrimSpace(message)
	if tag == "" {
		return message
	}
	if strings.HasPrefix(message, "[") {
		return message
	}
	return fmt.Sprintf("[%s] %s", tag, message)
}
