package logutil

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLoggerLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if err := InitLogger(lvl); err != nil {
			t.Errorf("InitLogger(%q): %v", lvl, err)
		}
	}
	if err := InitLogger("loud"); err == nil {
		t.Error("InitLogger accepted an unknown level")
	}
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	GetLogger().Info("hello", zap.Int("k", 3))
	if logs.Len() != 1 || logs.All()[0].Message != "hello" {
		t.Errorf("unexpected log entries: %v", logs.All())
	}
}
