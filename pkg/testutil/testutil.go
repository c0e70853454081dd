// Package testutil provides testing utilities for isis
package testutil

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/isis-group/isis-sub000/pkg/logger"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// CaptureLogs routes the global logger into an in-memory observer for the
// duration of the test. Entries are also echoed to the test output.
func CaptureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tee := zapcore.NewTee(core, zaptest.NewLogger(t).Core())
	restore := logger.ReplaceGlobal(zap.New(tee))
	t.Cleanup(restore)
	return logs
}

// RequireLogged fails the test unless an entry at level or above whose
// message contains substr was captured.
func RequireLogged(t *testing.T, logs *observer.ObservedLogs, level zapcore.Level, substr string) {
	t.Helper()
	for _, e := range logs.All() {
		if e.Level >= level && strings.Contains(e.Message, substr) {
			return
		}
	}
	t.Fatalf("no %s entry containing %q among %d captured entries", level, substr, logs.Len())
}

// RequireNotLogged fails the test if any entry at level or above was
// captured.
func RequireNotLogged(t *testing.T, logs *observer.ObservedLogs, level zapcore.Level) {
	t.Helper()
	for _, e := range logs.All() {
		if e.Level >= level {
			t.Fatalf("unexpected %s entry: %s", e.Level, e.Message)
		}
	}
}
