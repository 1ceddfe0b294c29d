package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPath_StaysInsideRoot(t *testing.T) {
	s, err := NewLocal(t.TempDir(), 5)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	tests := []struct {
		name string
		rel  string
	}{
		{"plain", "documents/a.pdf"},
		{"traversal", "../../etc/passwd"},
		{"absolute", "/etc/passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, err := s.Path(tt.rel)
			if err != nil {
				t.Fatalf("Path(%q) error = %v", tt.rel, err)
			}
			if !strings.HasPrefix(full, s.root) {
				t.Errorf("Path(%q) = %q escapes root %q", tt.rel, full, s.root)
			}
		})
	}
}

func TestRemove_MissingFileIsFine(t *testing.T) {
	s, _ := NewLocal(t.TempDir(), 5)
	if err := s.Remove("photos/missing.png"); err != nil {
		t.Errorf("Remove() error = %v", err)
	}

	full, _ := s.Path("photos/x.png")
	_ = os.MkdirAll(filepath.Dir(full), 0o755)
	_ = os.WriteFile(full, []byte("x"), 0o644)
	if err := s.Remove("photos/x.png"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("file still exists after Remove")
	}
}

func TestAllowedExtension(t *testing.T) {
	if !AllowedExtension(".png", ImageExtensions) {
		t.Error(".png should be an allowed image")
	}
	if AllowedExtension(".exe", DocumentExtensions) {
		t.Error(".exe should not be an allowed document")
	}
}
