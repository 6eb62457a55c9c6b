package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSystemVault is a filesystem-based implementation of the Vault
// interface. Artifacts are stored in a directory structure:
//
//	<root>/
//	  releases/
//	    <release>/
//	      assets.cask
//	      assets.cask.meta.json
type FileSystemVault struct {
	name        string
	root        string
	releasesDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	releasesDir := filepath.Join(root, "releases")
	if err := os.MkdirAll(releasesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create releases directory: %w", err)
	}
	return &FileSystemVault{
		name:        name,
		root:        root,
		releasesDir: releasesDir,
	}, nil
}

// PutArtifact stores an artifact under its release directory.
// Re-publishing the same release and name overwrites atomically.
func (v *FileSystemVault) PutArtifact(release, name string, r io.Reader, size int64) error {
	releaseDir := filepath.Join(v.releasesDir, release)
	if err := os.MkdirAll(releaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create release directory: %w", err)
	}
	return v.writeFile(filepath.Join(releaseDir, name), r, size)
}

// GetArtifact retrieves an artifact and writes it to w.
func (v *FileSystemVault) GetArtifact(release, name string, w io.Writer) error {
	srcPath := filepath.Join(v.releasesDir, release, name)
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("artifact %q not found for release %s", name, release)
		}
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.releasesDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements the Vault interface
var _ Vault = (*FileSystemVault)(nil)
