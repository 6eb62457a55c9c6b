package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Build packs every regular file under assetDir into an in-memory zip
// archive. Entry names are slash-separated paths relative to assetDir, in
// the lexical order of the walk, with zeroed timestamps, so the same asset
// tree always produces the same archive bytes. Returns the archive and its
// entry count.
func Build(assetDir string) ([]byte, int, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := 0

	err := filepath.WalkDir(assetDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(assetDir, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("adding entry %s: %w", rel, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("writing entry %s: %w", rel, err)
		}
		entries++
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("packing %s: %w", assetDir, err)
	}

	if err := zw.Close(); err != nil {
		return nil, 0, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), entries, nil
}
