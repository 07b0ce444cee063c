package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"player-controller/backend/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LoggerConfig
		debug bool
	}{
		{"json info", config.LoggerConfig{Level: "info", Format: "json"}, false},
		{"console debug", config.LoggerConfig{Level: "debug", Format: "console", Development: true}, true},
		{"bad level falls back to info", config.LoggerConfig{Level: "loud"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := z.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if !z.Core().Enabled(zapcore.InfoLevel) {
				t.Error("info must be enabled")
			}
		})
	}
}

func TestStdLog_NamesComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	z := zap.New(core)

	StdLog(z, "camera").Printf("[Camera] смонтирована")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "camera" {
		t.Errorf("logger name %q", entries[0].LoggerName)
	}
	if entries[0].Message != "[Camera] смонтирована" {
		t.Errorf("message %q", entries[0].Message)
	}
}

func TestStdLog_NilFallsBack(t *testing.T) {
	if StdLog(nil, "x") == nil {
		t.Fatal("nil zap logger must fall back to the default logger")
	}
	Nop().Printf("dropped")
}
