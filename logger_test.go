package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false, slog.LevelInfo).Info("render.phase", "to", "running")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if rec["msg"] != "render.phase" || rec["to"] != "running" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewLogger_TextOnTerminalAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, true, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	s := buf.String()
	if strings.Contains(s, "hidden") || !strings.Contains(s, "msg=shown") {
		t.Fatalf("unexpected output %q", s)
	}
}
