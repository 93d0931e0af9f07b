package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, l Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetLevel(LevelWarn)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestDefaultLevel(t *testing.T) {
	if GetLevel() != LevelWarn {
		t.Errorf("default level = %s, want WARN", GetLevel())
	}
	if IsVerbose() {
		t.Error("expected verbose to be false by default")
	}
}

func TestSetVerbose(t *testing.T) {
	defer SetVerbose(false)

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true")
	}
	SetVerbose(false)
	if GetLevel() != LevelWarn {
		t.Errorf("level = %s, want WARN", GetLevel())
	}
}

func TestDebugWhenVerbose(t *testing.T) {
	buf := capture(t, LevelDebug)

	Debug("test message %d", 42)

	if got := buf.String(); got != "[DEBUG] test message 42\n" {
		t.Errorf("unexpected debug output: %q", got)
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden")
	Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestWarnAndErrorAlwaysPrinted(t *testing.T) {
	buf := capture(t, LevelWarn)

	Warn("warning message")
	Error("error %s", "message")

	want := "[WARN] warning message\n[ERROR] error message\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestErrorLevelHidesWarnings(t *testing.T) {
	buf := capture(t, LevelError)

	Warn("hidden")
	Error("shown")

	if got := buf.String(); got != "[ERROR] shown\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelWarn, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimed(t *testing.T) {
	buf := capture(t, LevelDebug)

	Timed("query get_user")()

	got := buf.String()
	if !strings.HasPrefix(got, "[DEBUG] query get_user took ") {
		t.Errorf("unexpected timed output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, LevelWarn)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
