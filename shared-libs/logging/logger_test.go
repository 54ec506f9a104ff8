package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := WithUser(WithRequestID(New(&buf, "prep-service", "warn"), "req-1"), "u1")

	logger.Info("dropped")
	logger.Warn("kept", "task", "t1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{"msg": "kept", "service": "prep-service", "requestId": "req-1", "userId": "u1", "task": "t1"} {
		if entry[key] != want {
			t.Fatalf("%s: expected %q, got %v", key, want, entry[key])
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"debug": "DEBUG", " WARNING ": "WARN", "error": "ERROR", "": "INFO", "loud": "INFO"}
	for raw, want := range cases {
		if got := parseLevel(raw).String(); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}
