// Package resolve runs the bundle resolution pipeline: mode detection, key
// derivation, authenticated decryption, and archive materialization, in
// that order, once per process lifetime. It is the only package that ever
// holds the derived key or the raw ciphertext, and both stay confined to
// Run's call stack.
package resolve

import (
	"context"
	"fmt"
	"os"

	"cask-go/internal/archive"
	"cask-go/internal/cask"
	"cask-go/internal/kdf"
	"cask-go/internal/metadata"
	"cask-go/internal/sealing"
)

// Materializer persists authenticated plaintext and verifies its structure.
type Materializer interface {
	Materialize(plaintext []byte) (archive.Materialized, error)
}

// Options locates the artifacts the pipeline works from.
type Options struct {
	// DevAssetsDir is probed first; if it exists the pipeline
	// short-circuits to it and never touches the other two paths.
	DevAssetsDir string

	// ContainerPath is the encrypted container artifact.
	ContainerPath string

	// MetadataPath is the companion metadata artifact.
	MetadataPath string
}

// Result is the pipeline outcome handed to the broker and the ledger.
type Result struct {
	Bundle    cask.ResolvedBundle
	BuildID   string
	Entries   int
	Algorithm string
}

// Pipeline resolves exactly one bundle. Every failure is terminal for the
// startup attempt: no retries, no alternate keys, no partial recovery.
type Pipeline struct {
	opts         Options
	materializer Materializer
	logger       cask.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts Options, materializer Materializer, logger cask.Logger) *Pipeline {
	return &Pipeline{opts: opts, materializer: materializer, logger: logger}
}

// Run executes the pipeline to completion. It is synchronous; cancellation
// mid-decryption is not supported, so ctx is only consulted before work
// starts.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if dir, ok := cask.DetectDevMode(p.opts.DevAssetsDir); ok {
		p.logger.Info("dev mode detected, using raw assets", "path", dir)
		return Result{Bundle: cask.ResolvedBundle{Path: dir, DevMode: true}}, nil
	}

	// Both artifacts must be present before any cryptographic work, and a
	// missing container is reported distinctly from missing metadata.
	if _, err := os.Stat(p.opts.ContainerPath); err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("encrypted container %s: %w", p.opts.ContainerPath, cask.ErrMissingArtifact)
		}
		return Result{}, fmt.Errorf("%w: stat container: %v", cask.ErrIO, err)
	}

	md, err := metadata.Load(p.opts.MetadataPath)
	if err != nil {
		return Result{}, err
	}

	deriver, err := kdf.FromName(md.KeyDerivation)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", cask.ErrKeyDerivation, err)
	}
	suite, err := sealing.FromAlgorithm(md.Algorithm)
	if err != nil {
		return Result{}, err
	}

	p.logger.Debug("resolving encrypted bundle", "algorithm", md.Algorithm, "kdf", md.KeyDerivation)

	key, err := deriver.DeriveKey(md.BuildID)
	if err != nil {
		return Result{}, err
	}
	// The key lives only for the Open call below, whatever its outcome.
	defer kdf.Zero(key)

	container, err := os.ReadFile(p.opts.ContainerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("encrypted container %s: %w", p.opts.ContainerPath, cask.ErrMissingArtifact)
		}
		return Result{}, fmt.Errorf("%w: reading container: %v", cask.ErrIO, err)
	}

	plaintext, err := suite.Open(container, key, md.IV, md.AuthTag)
	if err != nil {
		return Result{}, fmt.Errorf("opening bundle: %w", err)
	}

	materialized, err := p.materializer.Materialize(plaintext)
	if err != nil {
		return Result{}, err
	}

	p.logger.Info("bundle resolved",
		"path", materialized.Path,
		"entries", materialized.Entries,
		"algorithm", md.Algorithm,
	)

	return Result{
		Bundle:    cask.ResolvedBundle{Path: materialized.Path, Decrypted: true},
		BuildID:   md.BuildID,
		Entries:   materialized.Entries,
		Algorithm: md.Algorithm,
	}, nil
}

// Start runs the pipeline on its own goroutine and settles the broker with
// the outcome, so the host stays responsive while a large bundle is read
// and decrypted. The returned channel receives the pipeline error (nil on
// success) exactly once.
func (p *Pipeline) Start(ctx context.Context, broker *cask.Broker) (<-chan error, error) {
	if err := broker.Begin(); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		result, err := p.Run(ctx)
		if err != nil {
			p.logger.Error("bundle resolution failed", "kind", cask.ErrorKind(err), "error", err)
			broker.Fail(err)
			done <- err
			return
		}
		broker.Settle(result.Bundle)
		done <- nil
	}()
	return done, nil
}
