package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/looplearn/loop-api/internal/config"
)

func TestSetupParsesLogLevels(t *testing.T) {
	testCases := []struct {
		name    string
		level   string
		debugOn bool
		infoOn  bool
	}{
		{name: "debug level", level: "debug", debugOn: true, infoOn: true},
		{name: "info level", level: "INFO", debugOn: false, infoOn: true},
		{name: "warn level", level: "warn", debugOn: false, infoOn: false},
		{name: "error level", level: "error", debugOn: false, infoOn: false},
		{name: "invalid level falls back to info", level: "verbose", debugOn: false, infoOn: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{LogLevel: tc.level})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("Setup returned a nil logger")
			}

			ctx := context.Background()
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tc.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tc.debugOn)
			}
			if got := logger.Enabled(ctx, slog.LevelInfo); got != tc.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tc.infoOn)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	testLogger, buf := GetTestLogger(t)

	ctx := WithLogger(context.Background(), testLogger)
	FromContext(ctx).Info("stored logger used")
	AssertLogContains(t, buf, "stored logger used")

	// Without a stored logger the default is returned, never nil.
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the default logger")
	}
	//nolint:staticcheck // exercising the nil-context path on purpose
	if FromContext(nil) == nil {
		t.Error("FromContext should tolerate a nil context")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	fallback, buf := GetTestLogger(t)

	// No logger in context: the fallback wins.
	FromContextOrDefault(context.Background(), fallback).Info("fallback used")
	AssertLogContains(t, buf, "fallback used")

	// Logger in context: it takes precedence over the fallback.
	stored, storedBuf := GetTestLogger(t)
	ctx := WithLogger(context.Background(), stored)
	FromContextOrDefault(ctx, fallback).Info("stored wins")
	AssertLogContains(t, storedBuf, "stored wins")

	if FromContextOrDefault(context.Background(), nil) == nil {
		t.Error("nil fallback should still yield the default logger")
	}
}
