package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.txt")
	if err := os.WriteFile(path, []byte("{}$"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, full, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if src != "{}$" {
		t.Errorf("source = %q", src)
	}
	if !filepath.IsAbs(full) {
		t.Errorf("path %q is not absolute", full)
	}

	if _, _, err := ReadSource(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"prog.txt":     "prog.bin",
		"dir/prog":     "dir/prog.bin",
		"a.b/prog.src": "a.b/prog.bin",
	}
	for in, want := range tests {
		if got := DefaultOutputPath(in); got != want {
			t.Errorf("DefaultOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}
