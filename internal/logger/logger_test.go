package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInitAndLogging(t *testing.T) {
	Init("debug", "json")

	if L.Enabled(context.Background(), slog.LevelDebug) != true {
		t.Error("expected debug level to be enabled")
	}

	L.Info("test info message", "key", "value")
}

func TestContextLogger(t *testing.T) {
	Init("info", "text")

	customLogger := L.With("request_id", "12345")

	ctx := WithContext(context.Background(), customLogger)
	extracted := FromContext(ctx)

	if extracted != customLogger {
		t.Fatal("expected the context-scoped logger back")
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	Init("info", "text")

	if got := FromContext(context.Background()); got != L {
		t.Error("expected the global logger for a bare context")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
