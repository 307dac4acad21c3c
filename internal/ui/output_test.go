package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

func TestMessages(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	orig := Out
	Out = &buf
	defer func() { Out = orig }()

	tests := []struct {
		name  string
		print func(string, ...interface{})
		want  string
	}{
		{"fail", Fail, "✘ pulling alpine\n"},
		{"warn", Warn, "○ pulling alpine\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.print("pulling %s", "alpine")
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
