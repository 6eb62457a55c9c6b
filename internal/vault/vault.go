// Package vault implements publication targets for packed bundle
// artifacts. The pack command pushes the encrypted container and its
// metadata to a vault for distribution; the resolution pipeline never
// reads from a vault; it only ever sees local artifacts.
package vault

import "io"

// Vault is a distribution backend for packed build artifacts. Artifacts
// are addressed by a release label (a public version tag, never the build
// identifier, which is secret-equivalent) and an artifact name.
type Vault interface {
	// PutArtifact stores an artifact for a release. size is the number of
	// bytes that will be read from r. Re-publishing the same release and
	// name overwrites.
	PutArtifact(release, name string, r io.Reader, size int64) error

	// GetArtifact retrieves an artifact and writes it to w.
	GetArtifact(release, name string, w io.Writer) error

	// ValidateSetup verifies that the vault is accessible and properly
	// configured.
	ValidateSetup() error
}
