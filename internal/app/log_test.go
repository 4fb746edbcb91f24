package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSgbHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			level:   slog.LevelInfo,
			message: "analysis shared",
			want:    "2024-01-15T10:30:00Z\tINFO\top-1\tanalysis shared\n",
		},
		{
			name:    "with record attrs",
			level:   slog.LevelError,
			message: "storage error",
			attrs:   []slog.Attr{slog.String("key", "saenggibu_analyses"), slog.Bool("quota_exceeded", true)},
			want:    "2024-01-15T10:30:00Z\tERROR\top-1\tstorage error\tkey=saenggibu_analyses\tquota_exceeded=true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &sgbHandler{w: &buf, opID: "op-1"}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestSgbHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &sgbHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "store")}).(*sgbHandler)
	if len(h.attrs) != 1 || len(h2.attrs) != 2 {
		t.Fatalf("attrs = %d and %d, want 1 and 2", len(h.attrs), len(h2.attrs))
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "written", 0)
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "component=store") {
		t.Errorf("expected pre-set attr component=store, got: %q", got)
	}
}

func TestSgbHandler_Enabled(t *testing.T) {
	h := &sgbHandler{min: slog.LevelInfo}

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{level: slog.LevelDebug, want: false},
		{level: slog.LevelInfo, want: true},
		{level: slog.LevelError, want: true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(dir, "test-op", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Debug("hidden")
	logger.Info("kept", "id", "1")
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, "sgb.log"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "hidden") {
		t.Errorf("debug message written without verbose: %q", got)
	}
	if !strings.Contains(got, "\ttest-op\tkept\tid=1") {
		t.Errorf("log = %q, want info line tagged with op id", got)
	}
}
