package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitWriterFiltersAndEncodes(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", true)
	defer Init("info", false)

	Info("dropped")
	Warn("kept", "user_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "kept" || rec["user_id"] != float64(7) {
		t.Fatalf("record = %v", rec)
	}
}

func TestWithContext(t *testing.T) {
	if WithContext(context.Background()) != Get() {
		t.Fatal("empty context should fall back to the global logger")
	}

	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")
	ctx := IntoContext(context.Background(), scoped)
	WithContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), "request_id=abc") {
		t.Fatalf("scoped logger not used: %q", buf.String())
	}
}
