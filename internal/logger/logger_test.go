package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Strob0t/workflow-notify/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Format: "json"}
	l := New(cfg)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.Logging{Level: "info", Service: "test-svc", Format: "json"}, &buf, true)

	l.Info("hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["service"] != "test-svc" {
		t.Errorf("expected service test-svc, got %v", rec["service"])
	}
	if rec["msg"] != "hello" {
		t.Errorf("expected msg hello, got %v", rec["msg"])
	}
}

func TestNewWithWriter_Format(t *testing.T) {
	tests := []struct {
		format   string
		tty      bool
		wantJSON bool
	}{
		{"json", true, true},
		{"text", false, false},
		{"auto", true, false},
		{"auto", false, true},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(config.Logging{Format: tt.format}, &buf, tt.tty)
			l.Info("hello")

			gotJSON := strings.HasPrefix(buf.String(), "{")
			if gotJSON != tt.wantJSON {
				t.Errorf("format=%q tty=%v: json=%v, want %v (%q)", tt.format, tt.tty, gotJSON, tt.wantJSON, buf.String())
			}
		})
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.Logging{Level: "warn"}, &buf, false)

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn record")
	}
}

func TestContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.Logging{Service: "svc"}, &buf, false).With("component", "test")

	ctx := WithRunID(WithRequestID(context.Background(), "req-1"), 77)
	l.InfoContext(ctx, "reporting")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["request_id"] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", rec["request_id"])
	}
	if rec["run_id"] != float64(77) {
		t.Errorf("expected run_id 77, got %v", rec["run_id"])
	}
	if rec["component"] != "test" {
		t.Errorf("expected component attr to survive WithAttrs, got %v", rec["component"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	// Empty context returns empty string
	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	// Set and retrieve
	ctx = WithRequestID(ctx, "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if got := RunID(ctx); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	ctx = WithRunID(ctx, 42)
	if got := RunID(ctx); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}
