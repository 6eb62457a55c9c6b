// Package app is the application layer between the CLI and the resolution
// pipeline. It constructs all dependencies from config, exposes high-level
// operations, and manages resource lifecycle on Close.
package app

import (
	"context"
	"fmt"
	"os"

	"cask-go/internal/archive"
	"cask-go/internal/cask"
	"cask-go/internal/config"
	"cask-go/internal/history"
	"cask-go/internal/ipc"
	"cask-go/internal/pack"
	"cask-go/internal/resolve"
	"cask-go/internal/vault"
)

// CaskApp wires the resolution pipeline, the access broker, the query
// socket, and the resolution ledger together from a Config.
type CaskApp struct {
	cfg      *config.Config
	broker   *cask.Broker
	pipeline *resolve.Pipeline
	history  history.Store
	logger   cask.Logger
	clock    cask.Clock
	logFile  *os.File
}

// NewCaskApp creates a fully wired CaskApp from the given config.
// operation identifies the CLI command being run (e.g. "Resolve", "Serve").
// The caller must call Close when done.
func NewCaskApp(cfg *config.Config, operation string) (*CaskApp, error) {
	clock := cask.RealClock{}

	opID := clock.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger.With("op", operation)}

	store, err := history.NewStoreFromConfig(cfg.History)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	stagingRoot := cfg.Staging.Dir
	if stagingRoot == "" {
		stagingRoot = os.TempDir()
	}
	materializer := archive.NewMaterializer(stagingRoot, cask.UUIDGenerator{})

	pipeline := resolve.NewPipeline(resolve.Options{
		DevAssetsDir:  cfg.Bundle.DevAssetsDir,
		ContainerPath: cfg.Bundle.ContainerPath,
		MetadataPath:  cfg.Bundle.MetadataPath,
	}, materializer, logger)

	return &CaskApp{
		cfg:      cfg,
		broker:   cask.NewBroker(),
		pipeline: pipeline,
		history:  store,
		logger:   logger,
		clock:    clock,
		logFile:  logFile,
	}, nil
}

// Resolve runs the resolution pipeline once, settles the broker, and records
// the outcome in the ledger. It returns the resolved bundle.
func (a *CaskApp) Resolve(ctx context.Context) (cask.ResolvedBundle, error) {
	result, err := a.resolveAndRecord(ctx)
	if err != nil {
		return cask.ResolvedBundle{}, err
	}
	return result.Bundle, nil
}

// Serve starts the query socket and resolves the bundle in the background.
// Consumer queries arriving before resolution finishes block until the
// broker settles. Serve returns when ctx is cancelled or the listener fails.
func (a *CaskApp) Serve(ctx context.Context) error {
	srv := ipc.NewServer(a.broker, a.logger)
	if err := srv.Listen(a.cfg.IPC.SocketPath); err != nil {
		return fmt.Errorf("starting query socket: %w", err)
	}

	go func() {
		// A failed resolution is not fatal to the server: queries keep
		// answering with the recorded failure.
		if _, err := a.resolveAndRecord(ctx); err != nil {
			a.logger.Warn("serving failed resolution", "kind", cask.ErrorKind(err))
		}
	}()

	a.logger.Info("query socket listening", "socket", a.cfg.IPC.SocketPath)
	return srv.Serve(ctx)
}

// resolveAndRecord drives the broker through one resolution attempt and
// appends the outcome to the ledger. Ledger rows never contain the build
// identifier.
func (a *CaskApp) resolveAndRecord(ctx context.Context) (resolve.Result, error) {
	startedAt := a.clock.Now()
	if err := a.broker.Begin(); err != nil {
		return resolve.Result{}, err
	}

	result, err := a.pipeline.Run(ctx)
	finishedAt := a.clock.Now()

	rec := history.Resolution{
		Mode:       history.ModeEncrypted,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if err != nil {
		rec.Outcome = history.OutcomeFailed
		rec.ErrorKind = cask.ErrorKind(err)
	} else {
		rec.Outcome = history.OutcomeResolved
		rec.AssetsPath = result.Bundle.Path
		rec.Entries = int64(result.Entries)
		rec.Algorithm = result.Algorithm
		if result.Bundle.DevMode {
			rec.Mode = history.ModeDev
		}
	}

	// Record before settling so a successful query implies the ledger row
	// is already written.
	if _, herr := a.history.RecordResolution(rec); herr != nil {
		a.logger.Warn("recording resolution", "error", herr)
	}

	if err != nil {
		a.broker.Fail(err)
	} else {
		a.broker.Settle(result.Bundle)
	}

	return result, err
}

// GetHistory returns the most recent resolution records.
func (a *CaskApp) GetHistory(limit int) ([]*history.Resolution, error) {
	return a.history.RecentResolutions(limit)
}

// Pack builds and seals a bundle from a directory of raw assets. When
// release is non-empty the produced artifacts are also published to the
// configured vault under that release label.
func (a *CaskApp) Pack(ctx context.Context, opts pack.Options, release string) (pack.Result, error) {
	result, err := pack.Pack(opts, a.logger)
	if err != nil {
		return pack.Result{}, err
	}

	if release != "" {
		if err := a.publish(ctx, result, release); err != nil {
			return pack.Result{}, err
		}
	}
	return result, nil
}

// publish uploads both bundle artifacts to the configured vault. Artifacts
// are addressed by release label, never by build identifier.
func (a *CaskApp) publish(ctx context.Context, result pack.Result, release string) error {
	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Vault)
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(); err != nil {
		return fmt.Errorf("validating vault: %w", err)
	}

	for _, path := range []string{result.ContainerPath, result.MetadataPath} {
		if err := a.uploadArtifact(v, release, path); err != nil {
			return err
		}
	}

	a.logger.Info("published bundle", "release", release, "vault", a.cfg.Vault.Type)
	return nil
}

func (a *CaskApp) uploadArtifact(v vault.Vault, release, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	if err := v.PutArtifact(release, info.Name(), f, info.Size()); err != nil {
		return fmt.Errorf("uploading %s: %w", info.Name(), err)
	}
	return nil
}

// Fetch downloads a previously published artifact from the vault into w.
func (a *CaskApp) Fetch(ctx context.Context, release, name string, w *os.File) error {
	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Vault)
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	if err := v.GetArtifact(release, name, w); err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}
	return nil
}

// Broker exposes the access broker for in-process consumers.
func (a *CaskApp) Broker() *cask.Broker {
	return a.broker
}

// Close closes the ledger and the log file.
func (a *CaskApp) Close() error {
	var firstErr error

	if err := a.history.Close(); err != nil {
		firstErr = fmt.Errorf("closing history store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
