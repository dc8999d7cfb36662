package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerRespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Info("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below the configured level, got %q", buf.String())
	}

	l.Warn("should appear")
	if buf.Len() == 0 {
		t.Fatal("expected output at the configured level")
	}
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	l.Info("order accepted", RequestID("req-1"), WalletID("w-1"), Instrument("ATOMUSDT"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry.RequestID != "req-1" || entry.WalletID != "w-1" || entry.Instrument != "ATOMUSDT" {
		t.Fatalf("fields were not applied to the entry: %+v", entry)
	}
}

func TestEnableMaskingRedactsSensitiveMessageContent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)
	l.EnableMasking()

	l.Info("login failed password=hunter2 for trader@example.com")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("expected password to be redacted, got %q", out)
	}
	if strings.Contains(out, "trader@example.com") {
		t.Fatalf("expected email to be redacted, got %q", out)
	}
}

func TestEnableMaskingLeavesMessagesUntouchedWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	l.Info("login failed password=hunter2")

	if !strings.Contains(buf.String(), "hunter2") {
		t.Fatal("expected message to pass through unmodified without EnableMasking")
	}
}
