package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// testRootCmd builds the command tree on throwaway storage.
func testRootCmd(t *testing.T) *cobra.Command {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("storage:\n  database_path: %s\n  artifact_dir: %s\n",
		filepath.Join(dir, "sessions.db"), filepath.Join(dir, "artifacts"))
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root, err := NewRootCmd(context.Background(), Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("NewRootCmd error: %v", err)
	}
	return root
}

const sampleCast = "{\"version\":2,\"width\":80,\"height\":24}\n" +
	"[0.5,\"i\",\"\\r\"]\n" +
	"[1.0,\"o\",\"\\u001b]2;mkdir demo\\u0007\"]\n"

func TestConvertCastToFile(t *testing.T) {
	root := testRootCmd(t)
	dir := t.TempDir()

	castPath := filepath.Join(dir, "rec.cast")
	if err := os.WriteFile(castPath, []byte(sampleCast), 0o644); err != nil {
		t.Fatalf("write cast: %v", err)
	}
	outPath := filepath.Join(dir, "rec.json")

	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{"convert-cast", castPath, "-o", outPath})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !strings.Contains(stderr.String(), "Converted 1 events to "+outPath) {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var events []map[string]any
	if err := json.Unmarshal(data, &events); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if len(events) != 1 || events[0]["data"] != "mkdir demo" || events[0]["event_type"] != "o" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestConvertCastToStdout(t *testing.T) {
	root := testRootCmd(t)
	dir := t.TempDir()

	castPath := filepath.Join(dir, "rec.cast")
	if err := os.WriteFile(castPath, []byte(sampleCast), 0o644); err != nil {
		t.Fatalf("write cast: %v", err)
	}

	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"convert-cast", castPath})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !strings.Contains(stdout.String(), "\"data\": \"mkdir demo\"") {
		t.Fatalf("unexpected stdout: %q", stdout.String())
	}
}

func TestConvertCastMissingFile(t *testing.T) {
	root := testRootCmd(t)
	root.SetArgs([]string{"convert-cast", "/nonexistent/rec.cast"})
	err := root.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "File not found: /nonexistent/rec.cast") {
		t.Fatalf("expected file-not-found error, got %v", err)
	}
}

func TestConvertCastInvalidRecording(t *testing.T) {
	root := testRootCmd(t)
	dir := t.TempDir()

	castPath := filepath.Join(dir, "bad.cast")
	if err := os.WriteFile(castPath, []byte("{\"version\":1}\n"), 0o644); err != nil {
		t.Fatalf("write cast: %v", err)
	}

	root.SetArgs([]string{"convert-cast", castPath})
	err := root.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Invalid .cast file:") {
		t.Fatalf("expected invalid-cast error, got %v", err)
	}
}
