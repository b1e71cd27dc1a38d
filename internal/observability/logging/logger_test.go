package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
)

func TestLoggerCarriesServiceAndPid(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "worker", "info")

	logger.Debug("suppressed")
	logger.Info("document processed", "doc_id", "doc-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["service"] != "worker" {
		t.Fatalf("service = %v", record["service"])
	}
	if record["pid"] != float64(os.Getpid()) {
		t.Fatalf("pid = %v", record["pid"])
	}
	if record["doc_id"] != "doc-1" {
		t.Fatalf("doc_id = %v", record["doc_id"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
