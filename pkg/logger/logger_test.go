package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerFormats(t *testing.T) {
	ctx := context.Background()

	var text bytes.Buffer
	if err := Init(WithWriter(&text)); err != nil {
		t.Fatalf("text init: %v", err)
	}
	Get().Info(ctx, "stored result", String("record_id", "r1"), Int64("time_ms", 5025000))
	if !strings.Contains(text.String(), "record_id=r1") || !strings.Contains(text.String(), "time_ms=5025000") {
		t.Fatalf("unexpected text output: %q", text.String())
	}

	var js bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&js)); err != nil {
		t.Fatalf("json init: %v", err)
	}
	Get().Warn(ctx, "row skipped", Int("line", 2), Bool("partial", true), Error(errors.New("bad time")))
	var entry map[string]any
	if err := json.Unmarshal(js.Bytes(), &entry); err != nil {
		t.Fatalf("json output not parseable: %v (%q)", err, js.String())
	}
	if entry["msg"] != "row skipped" || entry["line"] != float64(2) {
		t.Fatalf("unexpected json entry: %v", entry)
	}

	var tinted bytes.Buffer
	if err := Init(WithFormat(FormatTint), WithWriter(&tinted)); err != nil {
		t.Fatalf("tint init: %v", err)
	}
	Get().Error(ctx, "store failed", Float64("latency_ms", 1.5))
	if !strings.Contains(tinted.String(), "store failed") {
		t.Fatalf("unexpected tint output: %q", tinted.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("init: %v", err)
	}
	ctx := context.Background()

	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info: %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug should pass after SetLevelString: %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("api").Info(context.Background(), "request", String("path", "/api/records"))
	if !strings.Contains(buf.String(), "api.path=/api/records") {
		t.Fatalf("named logger should group fields: %q", buf.String())
	}
}
