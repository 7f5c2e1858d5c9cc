package ingest

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/lucamachado49/finance-pipeline/internal/config"
)

func TestNewLoggerRespectsLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info to be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("Expected warn to be enabled at warn level")
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(config.LoggingConfig{Level: "shouting"}); err == nil {
		t.Fatal("Expected error for unknown log level")
	}
}

func TestNewLoggerDevelopmentMode(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Development: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug to be enabled in development mode")
	}
}
