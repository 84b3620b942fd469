// Package logging provides structured logging for the strategy engine.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "option-strategist", "logs", "strategist.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// WithArchetype adds an archetype name to the logger context.
func WithArchetype(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("archetype", name).Logger()
}

// LogCandidates logs the selector's shortlist for a symbol.
func LogCandidates(logger zerolog.Logger, symbol string, names []string) {
	logger.Info().
		Str("event", "candidates").
		Str("symbol", symbol).
		Strs("archetypes", names).
		Msg("Candidate archetypes selected")
}

// LogRanked logs a ranked strategy.
func LogRanked(logger zerolog.Logger, symbol, archetype string, score, probability float64) {
	logger.Info().
		Str("event", "ranked").
		Str("symbol", symbol).
		Str("archetype", archetype).
		Float64("score", score).
		Float64("probability", probability).
		Msg("Strategy ranked")
}

// LogSkip logs a construction skip for one archetype.
func LogSkip(logger zerolog.Logger, symbol, archetype, reason string) {
	logger.Debug().
		Str("event", "skip").
		Str("symbol", symbol).
		Str("archetype", archetype).
		Str("reason", reason).
		Msg("Archetype skipped")
}

// LogOutcome logs a symbol-level outcome.
func LogOutcome(logger zerolog.Logger, symbol, status string, strategies, filtered int) {
	logger.Info().
		Str("event", "outcome").
		Str("symbol", symbol).
		Str("status", status).
		Int("strategies", strategies).
		Int("filtered_out", filtered).
		Msg("Symbol analysis complete")
}
