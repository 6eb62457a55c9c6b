package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// MemoryVault is an in-memory implementation of the Vault interface,
// useful for tests and dry-run publishing. Safe for concurrent use.
type MemoryVault struct {
	name      string
	artifacts map[string][]byte // "release/name" -> bytes
	mu        sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		artifacts: make(map[string][]byte),
	}
}

func artifactKey(release, name string) string {
	return release + "/" + name
}

// PutArtifact stores an artifact for a release.
func (m *MemoryVault) PutArtifact(release, name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[artifactKey(release, name)] = data
	return nil
}

// GetArtifact retrieves an artifact and writes it to w.
func (m *MemoryVault) GetArtifact(release, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.artifacts[artifactKey(release, name)]
	if !ok {
		return fmt.Errorf("artifact %q not found for release %s", name, release)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for the in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements the Vault interface
var _ Vault = (*MemoryVault)(nil)
