// Package pack is the producer side of the bundle pipeline: it archives an
// asset tree, seals it under the key derived from the build identifier, and
// writes the container plus its companion metadata artifact. The resolver
// consumes exactly what this package produces.
package pack

import (
	"fmt"
	"os"
	"path/filepath"

	"cask-go/internal/archive"
	"cask-go/internal/cask"
	"cask-go/internal/kdf"
	"cask-go/internal/metadata"
	"cask-go/internal/sealing"
)

// Default artifact names inside the output directory.
const (
	DefaultContainerName = "assets.cask"
	DefaultMetadataName  = "assets.cask.meta.json"
)

// Options controls one packing run.
type Options struct {
	// AssetDir is the asset tree to archive.
	AssetDir string

	// OutDir receives the container and metadata artifacts.
	OutDir string

	// BuildID is the password input for key derivation. It is the only
	// secret-equivalent value in the scheme and is never written to the
	// artifacts beyond the metadata buildId field the resolver re-derives
	// from.
	BuildID string

	// Algorithm selects the sealing suite. Empty means aes-256-gcm.
	Algorithm string
}

// Result reports what one packing run produced.
type Result struct {
	ContainerPath string
	MetadataPath  string
	Entries       int
	Algorithm     string
}

// Pack archives, seals, and writes the two artifacts.
func Pack(opts Options, logger cask.Logger) (Result, error) {
	if opts.BuildID == "" {
		return Result{}, fmt.Errorf("build id is required")
	}
	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = metadata.AlgorithmAESGCM
	}

	suite, err := sealing.FromAlgorithm(algorithm)
	if err != nil {
		return Result{}, err
	}

	plaintext, entries, err := archive.Build(opts.AssetDir)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("asset tree archived", "dir", opts.AssetDir, "entries", entries)

	deriver := kdf.NewScrypt()
	key, err := deriver.DeriveKey(opts.BuildID)
	if err != nil {
		return Result{}, err
	}
	body, iv, tag, err := suite.Seal(plaintext, key)
	kdf.Zero(key)
	if err != nil {
		return Result{}, fmt.Errorf("sealing bundle: %w", err)
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	containerPath := filepath.Join(opts.OutDir, DefaultContainerName)
	if err := os.WriteFile(containerPath, body, 0644); err != nil {
		return Result{}, fmt.Errorf("writing container: %w", err)
	}

	metadataPath := filepath.Join(opts.OutDir, DefaultMetadataName)
	md := &metadata.BuildMetadata{
		Algorithm:     algorithm,
		KeyDerivation: metadata.KeyDerivationScrypt,
		BuildID:       opts.BuildID,
		IV:            iv,
		AuthTag:       tag,
	}
	if err := metadata.Write(metadataPath, md); err != nil {
		return Result{}, err
	}

	logger.Info("bundle packed",
		"container", containerPath,
		"entries", entries,
		"algorithm", algorithm,
	)

	return Result{
		ContainerPath: containerPath,
		MetadataPath:  metadataPath,
		Entries:       entries,
		Algorithm:     algorithm,
	}, nil
}
