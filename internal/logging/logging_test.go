package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		{"", log.WarnLevel, false},
		{"debug", log.DebugLevel, false},
		{" INFO ", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLevel(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, LevelWarn)
	if err != nil {
		t.Fatalf("New unexpected error: %v", err)
	}

	logger.Info("hidden")
	logger.Error("shown", "container", "web")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "container=web") {
		t.Errorf("error message missing from output: %q", out)
	}
}

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dockers.log")

	logger, closer, err := Open(path, LevelDebug)
	if err != nil {
		t.Fatalf("Open unexpected error: %v", err)
	}
	logger.Debug("to file")
	if err := closer.Close(); err != nil {
		t.Errorf("Close unexpected error: %v", err)
	}
}
