package log

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{" DEBUG ", LevelDebug},
		{"info", LevelInfo},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetLevelGatesOutput(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelError)
	if enabled(LevelInfo) {
		t.Error("info enabled at error level")
	}
	if !enabled(LevelError) {
		t.Error("error disabled at error level")
	}

	SetLevel(LevelDebug)
	if !enabled(LevelDebug) {
		t.Error("debug disabled at debug level")
	}
}
