package logz

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range cases {
		logger, err := New(in)
		if err != nil {
			t.Fatalf("new(%q): %v", in, err)
		}
		if !logger.Core().Enabled(want) {
			t.Fatalf("level %q: expected %v enabled", in, want)
		}
		if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
			t.Fatalf("level %q: expected %v disabled", in, want-1)
		}
	}
}
