package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates Slot", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "geo-editor-data.json")

		if err := writeFileAtomic(filename, []byte("[]"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != "[]" {
			t.Errorf("Expected content '[]', got '%s'", string(got))
		}
	})

	t.Run("Replaces Slot And Cleans Up", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "geo-editor-data.json")

		if err := os.WriteFile(filename, []byte("[1]"), 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		for _, payload := range []string{"[2]", "[3]"} {
			if err := writeFileAtomic(filename, []byte(payload), 0644); err != nil {
				t.Fatalf("writeFileAtomic failed: %v", err)
			}
		}

		got, _ := os.ReadFile(filename)
		if string(got) != "[3]" {
			t.Errorf("Expected last write to win, got '%s'", string(got))
		}

		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
		if len(entries) != 1 {
			t.Errorf("expected only the slot in the directory, got %d entries", len(entries))
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "missing_folder", "slot.json")

		if err := writeFileAtomic(filename, []byte("[]"), 0644); err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}
