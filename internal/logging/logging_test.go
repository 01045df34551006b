package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/meetspot/meetspot/internal/config"
)

func TestNewWritesToFileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "meetspot.log")

	logger, err := New(config.LogSettings{Level: "INFO", FilePath: logFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("sink check")
	_ = logger.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log file to contain output")
	}
}

func TestNewWithoutFilePath(t *testing.T) {
	logger, err := New(config.LogSettings{Level: "DEBUG"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
	_ = logger.Sync()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"INFO":    zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"ERROR":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}

	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
