package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func initBuffer(t *testing.T, opts ...Option) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := Init(append(opts, WithWriter(&buf))...); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("info"); err != nil {
		t.Fatalf("failed to set level: %v", err)
	}
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	return entry
}

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
}

func TestLoggerStructuredFields(t *testing.T) {
	buf := initBuffer(t)

	Get().Info(context.Background(), "allocation published",
		String("internship_id", "5"),
		Int("entries", 2),
		Float64("score", 0.6),
		Error(errors.New("boom")),
	)

	entry := lastEntry(t, buf)
	if entry["msg"] != "allocation published" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["internship_id"] != "5" {
		t.Errorf("missing string field: %v", entry)
	}
	if entry["entries"] != float64(2) {
		t.Errorf("missing int field: %v", entry)
	}
	if entry["error"] != "boom" {
		t.Errorf("missing error field: %v", entry)
	}
	if _, ok := entry["caller"]; !ok {
		t.Errorf("missing caller: %v", entry)
	}
}

func TestLoggerNamed(t *testing.T) {
	buf := initBuffer(t)

	Named("orchestrator").Info(context.Background(), "test message")

	if entry := lastEntry(t, buf); entry["logger"] != "orchestrator" {
		t.Errorf("expected logger name, got %v", entry["logger"])
	}
}

func TestLoggerLevel(t *testing.T) {
	buf := initBuffer(t)

	Get().Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatal(err)
	}
	Get().Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not written at debug level")
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerTraceFields(t *testing.T) {
	buf := initBuffer(t)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	Get().Warn(ctx, "traced")

	entry := lastEntry(t, buf)
	if entry["trace_id"] != sc.TraceID().String() {
		t.Errorf("expected trace id, got %v", entry["trace_id"])
	}
}

func TestLoggerConsoleFormat(t *testing.T) {
	buf := initBuffer(t, WithFormat(FormatConsole))

	Get().Info(context.Background(), "console line", String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, "console line") || strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected console output, got %q", out)
	}
}

func TestNop(t *testing.T) {
	Nop().Named("x").Error(context.Background(), "discarded")
}
