package magetasks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitialize(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if err := Initialize(); err != nil {
		t.Errorf("Initialize() returned error: %v", err)
	}

	binDir := filepath.Join(tmpDir, "bin")
	if _, err := os.Stat(binDir); os.IsNotExist(err) {
		t.Errorf("Initialize() should create bin directory, but it doesn't exist")
	}

	// EvalSymlinks handles temp dirs behind symlinks
	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualRoot, _ := filepath.EvalSymlinks(ProjectRoot)
	if actualRoot != expectedRoot {
		t.Errorf("ProjectRoot = %s, want %s", actualRoot, expectedRoot)
	}
}

func TestBinPath(t *testing.T) {
	if BinPath != "./bin/exnote" {
		t.Errorf("BinPath = %s, want ./bin/exnote", BinPath)
	}
}
