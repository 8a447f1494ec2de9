package index

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_Missing(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "remote.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := idx.Get("anything"); got != "" {
		t.Errorf("Expected empty mapping, got %q", got)
	}
}

func TestSetSaveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "remote.json")
	idx, _ := Open(path)

	idx.Set("local-1", "remote-1")
	idx.Set("local-2", "remote-2")
	idx.Remove("local-2")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := reopened.Get("local-1"); got != "remote-1" {
		t.Errorf("Expected remote-1, got %q", got)
	}
	if got := reopened.Get("local-2"); got != "" {
		t.Errorf("Expected removed mapping, got %q", got)
	}
	if ids := reopened.TaskIDs(); len(ids) != 1 {
		t.Errorf("Expected 1 id, got %v", ids)
	}
}

func TestSave_CleanIndexDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.json")
	idx, _ := Open(path)

	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file for a clean index, stat err = %v", err)
	}
}
