package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meetspot/meetspot/internal/config"
)

// New creates a structured JSON logger honoring the resolved log settings:
// the level string is case-insensitive (unknown values fall back to info) and
// the file path, when usable, is added as a second sink next to stdout.
func New(settings config.LogSettings) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(settings.Level))
	cfg.OutputPaths = outputPaths(settings.FilePath)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// parseLevel maps a settings level string to a zap level, defaulting to info.
func parseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// outputPaths returns stdout plus the log file when its directory can be
// created; a bad file path degrades to stdout-only rather than failing startup.
func outputPaths(filePath string) []string {
	paths := []string{"stdout"}
	if filePath == "" {
		return paths
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths
		}
	}
	return append(paths, filePath)
}
