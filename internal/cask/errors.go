package cask

import "errors"

// Error taxonomy for the bundle resolution pipeline. Every failure in the
// decrypt branch wraps exactly one of these sentinels, so callers classify
// outcomes with errors.Is instead of parsing messages. All of them are
// terminal for the startup attempt: the pipeline never retries, never tries
// alternate keys, and never falls back to a partial result.
var (
	// ErrMissingArtifact: the encrypted container or its companion metadata
	// file is absent. Reported before any cryptographic work is attempted.
	ErrMissingArtifact = errors.New("bundle artifact missing")

	// ErrKeyDerivation: the KDF failed on parameters or resources. Note that
	// a "wrong" build ID is not a derivation error: any string derives a
	// key, and correctness surfaces downstream as ErrAuthentication.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrAuthentication: AEAD tag verification failed, tampered ciphertext
	// or wrong key. No plaintext is returned or persisted on this path.
	ErrAuthentication = errors.New("bundle authentication failed")

	// ErrArchiveFormat: the plaintext authenticated correctly but is not a
	// well-formed archive. This indicates a packaging bug, not tampering,
	// and is reported separately for that reason.
	ErrArchiveFormat = errors.New("decrypted bundle is not a valid archive")

	// ErrIO: writing or reading the ephemeral archive failed.
	ErrIO = errors.New("bundle storage failure")

	// ErrNotReady: the broker was queried before resolution settled.
	ErrNotReady = errors.New("bundle resolution not settled")
)

// ErrorKind returns a short stable name for the taxonomy sentinel wrapped by
// err. Used for the resolution ledger and log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingArtifact):
		return "missing-artifact"
	case errors.Is(err, ErrKeyDerivation):
		return "key-derivation"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrArchiveFormat):
		return "archive-format"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrNotReady):
		return "not-ready"
	default:
		return "unknown"
	}
}
