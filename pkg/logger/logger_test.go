package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zapcore.Level
	}{
		{"debug lowercase", "debug", zapcore.DebugLevel},
		{"debug uppercase", "DEBUG", zapcore.DebugLevel},
		{"debug mixed case", "Debug", zapcore.DebugLevel},
		{"info lowercase", "info", zapcore.InfoLevel},
		{"info uppercase", "INFO", zapcore.InfoLevel},
		{"warn lowercase", "warn", zapcore.WarnLevel},
		{"warning lowercase", "warning", zapcore.WarnLevel},
		{"error lowercase", "error", zapcore.ErrorLevel},
		{"error uppercase", "ERROR", zapcore.ErrorLevel},
		{"unknown defaults to info", "unknown", zapcore.InfoLevel},
		{"empty defaults to info", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseLevel(tt.level)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.level, result, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"json format default", Config{Level: "info", Format: ""}},
		{"json format explicit", Config{Level: "info", Format: "json"}},
		{"text format", Config{Level: "debug", Format: "text"}},
		{"text format uppercase", Config{Level: "warn", Format: "TEXT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if err != nil {
				t.Fatalf("NewLogger() returned error: %v", err)
			}
			if logger == nil {
				t.Error("NewLogger() returned nil")
			}
		})
	}
}

func TestNewLogger_LevelApplied(t *testing.T) {
	logger, err := NewLogger(Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger() returned error: %v", err)
	}

	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be disabled when level is error")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled when level is error")
	}
}
