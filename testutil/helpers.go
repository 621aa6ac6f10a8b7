package testutil

import (
	"encoding/json"
	"os"
	"testing"
)

// CreateTempDir creates a temporary directory for testing
func CreateTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "webui-metrics-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// ChatBlob builds a payload JSON blob from message roles and model names
func ChatBlob(t *testing.T, roles []string, models []string) string {
	t.Helper()
	type message struct {
		Role string `json:"role"`
	}
	messages := make([]message, len(roles))
	for i, role := range roles {
		messages[i] = message{Role: role}
	}
	blob, err := json.Marshal(map[string]any{
		"messages": messages,
		"models":   models,
	})
	if err != nil {
		t.Fatalf("Failed to marshal chat blob: %v", err)
	}
	return string(blob)
}
