// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     logging
// Description: Factory functions and process-wide logger configuration
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

var (
	globalMu     sync.RWMutex
	globalLogger = zap.NewNop()
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name, added as "service" to every entry
	ServiceName string

	// Log level (debug, info, warn, error)
	Level string

	// Output format: "json" or "console" (default: json)
	Format string

	// OutputPath is the log file. The terminal belongs to the TUI, so
	// "stderr" and "stdout" are only useful for non-interactive commands.
	OutputPath string
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
		OutputPath:  DefaultLogFile(),
	}
}

// DefaultLogFile returns the default log file location
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "dolmetscher.log")
}

// NewLogger builds a zap logger from the configuration
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := "json"
	if cfg.Format == "console" || cfg.Format == "text" {
		encoding = "console"
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	output := cfg.OutputPath
	if output == "" {
		output = "stderr"
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}
	if cfg.ServiceName != "" {
		zcfg.InitialFields = map[string]interface{}{"service": cfg.ServiceName}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Configure replaces the process-wide logger used by New. Loggers
// created before the call keep their old output.
func Configure(cfg LoggerConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	globalMu.Lock()
	old := globalLogger
	globalLogger = logger
	globalMu.Unlock()

	_ = old.Sync()
	return nil
}

// Shutdown flushes the process-wide logger
func Shutdown() error {
	return base().Sync()
}

func base() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewTest returns a logger that writes through t.Log
func NewTest(t testing.TB, name string) *Logger {
	return wrap(zaptest.NewLogger(t).Named(name), name)
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return wrap(zap.NewNop(), "nop")
}

// parseLevel converts a string level to a zap level
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
