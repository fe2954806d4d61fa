// internal/logging/logging.go
// Package logging configures the process-wide logger. Output goes to stderr
// and an optional log file; stdout is reserved for the MCP protocol stream.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logger  = zerolog.Nop()
)

// Init sets up the package logger. An empty logPath disables file output.
func Init(logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(io.MultiWriter(writers...)).Level(level).With().Timestamp().Logger()
	return nil
}

// Close flushes and releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	logger = zerolog.Nop()
	return err
}

// LogEvent records an informational message.
func LogEvent(format string, args ...any) {
	logger.Info().Msgf(format, args...)
}

// Debugf records a debug message, dropped unless debug logging is enabled.
func Debugf(format string, args ...any) {
	logger.Debug().Msgf(format, args...)
}

// Warnf records a warning.
func Warnf(format string, args ...any) {
	logger.Warn().Msgf(format, args...)
}

// Errorf records an error message.
func Errorf(format string, args ...any) {
	logger.Error().Msgf(format, args...)
}
