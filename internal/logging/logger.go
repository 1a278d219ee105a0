// Package logging provides per-component logrus loggers for handlink.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LevelEnv overrides the configured log level when set.
const LevelEnv = "HANDLINK_LOG_LEVEL"

// Config controls how component loggers are built.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`
	// Format is "text" (default) or "json".
	Format string `yaml:"format"`
}

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	base = newBase(Config{}, os.Stderr)
)

// Configure rebuilds the shared logger from cfg. Loggers handed out earlier
// keep working and pick up the new level, format and output.
func Configure(cfg Config, out io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if out == nil {
		out = os.Stderr
	}
	next := newBase(cfg, out)
	base.SetLevel(next.Level)
	base.SetFormatter(next.Formatter)
	base.SetOutput(out)
}

// NewLogger returns the logger for a component, creating it on first use.
// Every entry carries a "component" field.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[component]; ok {
		return l
	}
	l := base.WithField("component", component)
	loggers[component] = l
	return l
}

// Discard returns a logger that drops everything. Used by tests and by
// packages constructed without a logger.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newBase(cfg Config, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	levelStr := "info"
	if env := os.Getenv(LevelEnv); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
