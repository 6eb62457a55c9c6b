package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFSVault(t *testing.T) *FileSystemVault {
	t.Helper()
	v, err := NewFileSystemVault("test-vault", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	return v
}

func TestFileSystemVault_PutAndGetArtifact(t *testing.T) {
	v := newTestFSVault(t)
	content := "encrypted container bytes"

	err := v.PutArtifact("1.4.2", "assets.cask", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("PutArtifact() error = %v", err)
	}

	var buf bytes.Buffer
	if err := v.GetArtifact("1.4.2", "assets.cask", &buf); err != nil {
		t.Fatalf("GetArtifact() error = %v", err)
	}
	if got := buf.String(); got != content {
		t.Errorf("GetArtifact() = %q, want %q", got, content)
	}
}

func TestFileSystemVault_Layout(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test-vault", root)
	if err != nil {
		t.Fatal(err)
	}

	content := "metadata json"
	if err := v.PutArtifact("1.4.2", "assets.cask.meta.json", strings.NewReader(content), int64(len(content))); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, "releases", "1.4.2", "assets.cask.meta.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected artifact at %s: %v", want, err)
	}
}

func TestFileSystemVault_SizeMismatch(t *testing.T) {
	v := newTestFSVault(t)

	err := v.PutArtifact("1.0.0", "assets.cask", strings.NewReader("short"), 100)
	if err == nil {
		t.Error("PutArtifact() with wrong size should return error")
	}

	// The failed write must not leave a partial artifact behind.
	var buf bytes.Buffer
	if err := v.GetArtifact("1.0.0", "assets.cask", &buf); err == nil {
		t.Error("GetArtifact() after failed put should return error")
	}
}

func TestFileSystemVault_GetMissing(t *testing.T) {
	v := newTestFSVault(t)

	var buf bytes.Buffer
	if err := v.GetArtifact("9.9.9", "assets.cask", &buf); err == nil {
		t.Error("GetArtifact() for missing artifact should return error")
	}
}

func TestFileSystemVault_Overwrite(t *testing.T) {
	v := newTestFSVault(t)

	for _, content := range []string{"first", "second"} {
		if err := v.PutArtifact("1.0.0", "assets.cask", strings.NewReader(content), int64(len(content))); err != nil {
			t.Fatalf("PutArtifact(%q) error = %v", content, err)
		}
	}

	var buf bytes.Buffer
	if err := v.GetArtifact("1.0.0", "assets.cask", &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "second" {
		t.Errorf("GetArtifact() = %q, want re-published content", got)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	v := newTestFSVault(t)
	if err := v.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
