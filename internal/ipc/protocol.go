// Package ipc carries the consumer-facing query channel across the trust
// boundary: a unix domain socket speaking newline-delimited JSON. Exactly
// two operations exist, mirroring cask.AssetQuery; the protocol has no way
// to express keys, metadata, or ciphertext, so the boundary is enforced by
// construction. This package imports only the domain package.
package ipc

import "cask-go/internal/cask"

// Operation names on the wire.
const (
	OpGetAssetsPath = "get-assets-path"
	OpGetIsDevMode  = "get-is-dev-mode"
)

// Request is one consumer query.
type Request struct {
	Op string `json:"op"`
}

// Response answers one Request. On failure OK is false and Kind carries
// the stable error-taxonomy name so the client can reconstruct the
// sentinel for errors.Is.
type Response struct {
	OK    bool   `json:"ok"`
	Path  string `json:"path,omitempty"`
	Dev   bool   `json:"dev,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// sentinelForKind maps a taxonomy kind back to its sentinel, so taxonomy
// classification survives the process boundary.
func sentinelForKind(kind string) error {
	for _, sentinel := range []error{
		cask.ErrMissingArtifact,
		cask.ErrKeyDerivation,
		cask.ErrAuthentication,
		cask.ErrArchiveFormat,
		cask.ErrIO,
		cask.ErrNotReady,
	} {
		if cask.ErrorKind(sentinel) == kind {
			return sentinel
		}
	}
	return nil
}
