// Package log builds the logrus logger shared by the commands.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/version"
)

// DefaultLevel is used when the configured level is empty.
const DefaultLevel = logrus.WarnLevel

// NewLogger returns a logger writing to stderr, or to cfg.File when set.
// verbose forces the debug level.
func NewLogger(cfg config.LogConfig, verbose bool) (*logrus.Entry, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = logrus.DebugLevel
	}

	out := io.Writer(os.Stderr)
	if cfg.File != "" {
		path := config.ExpandHome(cfg.File)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		// #nosec G304 - path comes from the user's configuration
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
	}

	return newEntry(out, level, cfg.JSON), nil
}

func newEntry(out io.Writer, level logrus.Level, json bool) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	if json {
		log.Formatter = &logrus.JSONFormatter{}
	} else {
		log.Formatter = &logrus.TextFormatter{
			DisableTimestamp: true,
		}
	}

	return log.WithFields(logrus.Fields{
		"version": version.Version,
	})
}

// ParseLevel parses a logrus level name. Empty selects DefaultLevel.
func ParseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return DefaultLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return DefaultLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.Out = io.Discard
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}
