package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "data.csv")
	if err := SafeWriteFile(path, []byte("a,b\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "a,b\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteJSONAndFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := WriteJSON(filepath.Join(root, "project.json"), map[string]string{"name": "p"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	deep := filepath.Join(root, "runs", "abc")
	if err := EnsureDir(deep); err != nil {
		t.Fatal(err)
	}
	got, err := FindProjectRoot(deep)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	if got != root {
		t.Fatalf("root = %q, want %q", got, root)
	}
	if _, err := FindProjectRoot(t.TempDir()); err == nil {
		t.Fatalf("expected error outside a project")
	}
}
