package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Init initializes the logging system, writing logs to ~/.dealboard/logs/dealboard.log
// Uses text format for human readability.
func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitDir(filepath.Join(homeDir, ".dealboard", "logs"))
}

// InitDir initializes logging into dealboard.log inside logDir
func InitDir(logDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, "dealboard.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	setup(file, levelFromEnv())
	return nil
}

// Discard routes all logging nowhere (used when the log file cannot be opened)
func Discard() {
	setup(io.Discard, slog.LevelError)
}

func setup(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Redirect standard log package output to the same file
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)
}

// levelFromEnv reads DEALBOARD_LOG_LEVEL (debug, info, warn, error); default debug
func levelFromEnv() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("DEALBOARD_LOG_LEVEL"))); err != nil {
		return slog.LevelDebug
	}
	return level
}
