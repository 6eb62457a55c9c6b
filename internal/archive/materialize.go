// Package archive persists authenticated bundle plaintext to ephemeral
// storage and structurally verifies it, and builds archives on the producer
// side. Only plaintext that already passed AEAD verification ever reaches
// this package.
package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"cask-go/internal/cask"
)

// ArchiveName is the file name of the materialized bundle inside its
// ephemeral directory.
const ArchiveName = "assets.zip"

// Materialized describes a successfully persisted and verified bundle.
type Materialized struct {
	// Path is the archive file the consumer loads assets from.
	Path string

	// Entries is the number of entries in the archive's central directory.
	Entries int
}

// Materializer writes decrypted bundle bytes to a fresh, process-unique
// directory under a staging root and verifies the result parses as a zip
// archive. It does not retain ownership of the result: cleanup across
// process restarts is best-effort and out of scope.
type Materializer struct {
	stagingRoot string
	idgen       cask.IDGenerator
}

// NewMaterializer creates a Materializer rooted at stagingRoot.
func NewMaterializer(stagingRoot string, idgen cask.IDGenerator) *Materializer {
	return &Materializer{stagingRoot: stagingRoot, idgen: idgen}
}

// Materialize writes plaintext as a single archive file in a fresh
// collision-resistant directory, then reads the archive's entry table to
// confirm it is well formed. A structurally invalid archive yields
// cask.ErrArchiveFormat and the directory is removed: an archive that
// authenticated but does not parse indicates a packaging bug, not
// tampering, and must still never be handed to the consumer.
func (m *Materializer) Materialize(plaintext []byte) (Materialized, error) {
	dir := filepath.Join(m.stagingRoot, fmt.Sprintf("cask-%d-%s", os.Getpid(), m.idgen.New()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Materialized{}, fmt.Errorf("%w: creating staging directory: %v", cask.ErrIO, err)
	}

	path := filepath.Join(dir, ArchiveName)
	if err := os.WriteFile(path, plaintext, 0600); err != nil {
		os.RemoveAll(dir)
		return Materialized{}, fmt.Errorf("%w: writing archive: %v", cask.ErrIO, err)
	}

	entries, err := countEntries(path)
	if err != nil {
		os.RemoveAll(dir)
		return Materialized{}, err
	}

	return Materialized{Path: path, Entries: entries}, nil
}

// countEntries reads the zip central directory without extracting entries.
func countEntries(path string) (int, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", cask.ErrArchiveFormat, err)
	}
	defer r.Close()
	return len(r.File), nil
}
