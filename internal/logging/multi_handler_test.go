package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f failingHandler) WithGroup(string) slog.Handler      { return f }

func TestMultiHandlerFansOut(t *testing.T) {
	var debug, info bytes.Buffer
	logger := slog.New(NewMultiHandler(
		NewJSONHandler(&debug, slog.LevelDebug),
		NewJSONHandler(&info, slog.LevelInfo),
	)).With("request_id", "req-1")

	logger.Debug("only debug")
	logger.Info("post verified", "post_id", "p1")

	if strings.Count(debug.String(), "\n") != 2 {
		t.Errorf("debug sink got %q", debug.String())
	}
	lines := strings.Split(strings.TrimSpace(info.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("info sink got %d records", len(lines))
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["request_id"] != "req-1" || record["post_id"] != "p1" {
		t.Errorf("record %v", record)
	}
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, NewJSONHandler(&buf, slog.LevelInfo))

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	if err := h.Handle(context.Background(), r); err == nil {
		t.Error("expected the sink error to be reported")
	}
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("healthy sink skipped: %q", buf.String())
	}
}

func TestLevel(t *testing.T) {
	if Level("development") != slog.LevelDebug || Level("production") != slog.LevelInfo {
		t.Error("unexpected level mapping")
	}
}
