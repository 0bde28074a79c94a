package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithSessionStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, sessionID := WithSession(slog.New(slog.NewJSONHandler(&buf, nil)))
	if sessionID == "" {
		t.Fatal("expected session id")
	}
	logger.With("extra", "value").Info("scan started")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"`+sessionID+`"`) {
		t.Errorf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestWithSessionIDsDiffer(t *testing.T) {
	_, first := WithSession(nil)
	_, second := WithSession(nil)
	if first == second {
		t.Fatalf("expected distinct session ids, got %q twice", first)
	}
}
