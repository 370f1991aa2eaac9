package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		l, err := New(env, "debug")
		if err != nil {
			t.Fatalf("env=%s: unexpected error: %v", env, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("env=%s: expected debug level enabled", env)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("dev", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
