// Package logging configures the process-wide structured loggers.
// It provides a JSON logger for machine consumption on stdout, a text logger
// for humans on stderr, and rotating per-service file loggers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

// levelOptions builds handler options for the given leveler.
func levelOptions(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level}
}

// Init initializes the logging system with structured and human-readable loggers.
// It configures JSON output for structured logs and Text output for human-readable logs.
func Init(level slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, levelOptions(level)))
	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, levelOptions(level)))
	slog.SetDefault(structuredLogger)
}

// SetOutput redirects logger output, e.g., for tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer, level slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOutput, levelOptions(level)))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanReadableOutput, levelOptions(level)))
	slog.SetDefault(structuredLogger)
}

// SetStructured replaces the global structured logger, e.g. to route all
// service loggers into a rotating file.
func SetStructured(logger *slog.Logger) {
	structuredLogger = logger
	slog.SetDefault(logger)
}

// Structured returns the globally configured structured (JSON) logger.
// Returns the slog default if Init() has not been called.
func Structured() *slog.Logger {
	if structuredLogger == nil {
		return slog.Default()
	}
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable (Text) logger.
func HumanReadable() *slog.Logger {
	if humanReadableLogger == nil {
		return slog.Default()
	}
	return humanReadableLogger
}

// ForService creates a new logger instance with the 'service' attribute added.
// It uses the global structured logger as the base.
func ForService(serviceName string) *slog.Logger {
	return Structured().With("service", serviceName)
}

// NewFileLogger creates a new slog.Logger instance configured to write JSON logs
// to the specified file path using lumberjack for rotation.
// It includes a 'service' attribute in all logs.
// It returns the logger, a function to close the underlying log writer, and an error if setup fails.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack does not create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	fileHandler := slog.NewJSONHandler(logWriter, levelOptions(level))
	logger := slog.New(fileHandler).With("service", serviceName)

	return logger, logWriter.Close, nil
}
