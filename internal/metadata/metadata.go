// Package metadata loads and validates the companion metadata artifact that
// ships beside the encrypted container. The artifact is read exactly once at
// startup and is immutable after load. This package must never be imported
// by consumer-facing code; the consumer sees only the resolved path.
package metadata

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cask-go/internal/cask"
)

// ErrInvalid marks a metadata artifact that parsed but fails validation:
// unknown algorithm, bad hex, or IV/tag lengths inconsistent with the
// declared algorithm. Validation runs before any cryptographic work.
var ErrInvalid = errors.New("invalid bundle metadata")

// Algorithm identifiers accepted in the artifact.
const (
	AlgorithmAESGCM = "aes-256-gcm"
	AlgorithmAge    = "age"
)

// KDF identifiers accepted in the artifact.
const (
	KeyDerivationScrypt = "scrypt"
)

// AES-256-GCM framing constraints. The IV range follows GCM's supported
// nonce sizes as produced by the packer; the tag is always a full 16 bytes.
const (
	minGCMIVLen   = 12
	maxGCMIVLen   = 16
	gcmAuthTagLen = 16
)

// BuildMetadata describes how one encrypted container was produced:
// which AEAD sealed it, which KDF derives its key, and the out-of-band
// IV and authentication tag for suites that carry them here rather than
// in the container body.
type BuildMetadata struct {
	Algorithm     string
	KeyDerivation string
	BuildID       string
	IV            []byte
	AuthTag       []byte
}

// artifact is the on-disk JSON shape, with IV and tag hex-encoded.
type artifact struct {
	Algorithm     string `json:"algorithm"`
	KeyDerivation string `json:"keyDerivation"`
	BuildID       string `json:"buildId"`
	IV            string `json:"iv"`
	AuthTag       string `json:"authTag"`
}

// Load reads, parses, and validates the metadata artifact at path.
// A missing file is reported as cask.ErrMissingArtifact, distinct from a
// missing container, so startup diagnostics can name the absent piece.
func Load(path string) (*BuildMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("metadata artifact %s: %w", path, cask.ErrMissingArtifact)
		}
		return nil, fmt.Errorf("reading metadata artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing metadata artifact: %w: %v", ErrInvalid, err)
	}

	iv, err := hex.DecodeString(a.IV)
	if err != nil {
		return nil, fmt.Errorf("decoding iv: %w: %v", ErrInvalid, err)
	}
	tag, err := hex.DecodeString(a.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("decoding authTag: %w: %v", ErrInvalid, err)
	}

	md := &BuildMetadata{
		Algorithm:     a.Algorithm,
		KeyDerivation: a.KeyDerivation,
		BuildID:       a.BuildID,
		IV:            iv,
		AuthTag:       tag,
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

// Validate checks the structural invariants the pipeline relies on before
// it attempts key derivation or decryption.
func (m *BuildMetadata) Validate() error {
	if m.BuildID == "" {
		return fmt.Errorf("%w: empty buildId", ErrInvalid)
	}
	if m.KeyDerivation != KeyDerivationScrypt {
		return fmt.Errorf("%w: unknown key derivation %q", ErrInvalid, m.KeyDerivation)
	}

	switch m.Algorithm {
	case AlgorithmAESGCM:
		if len(m.IV) < minGCMIVLen || len(m.IV) > maxGCMIVLen {
			return fmt.Errorf("%w: iv length %d outside [%d, %d] for %s",
				ErrInvalid, len(m.IV), minGCMIVLen, maxGCMIVLen, m.Algorithm)
		}
		if len(m.AuthTag) != gcmAuthTagLen {
			return fmt.Errorf("%w: authTag length %d, want %d for %s",
				ErrInvalid, len(m.AuthTag), gcmAuthTagLen, m.Algorithm)
		}
	case AlgorithmAge:
		// age ciphertext is self-framing; IV and tag live in the container.
		if len(m.IV) != 0 || len(m.AuthTag) != 0 {
			return fmt.Errorf("%w: iv/authTag must be empty for %s", ErrInvalid, m.Algorithm)
		}
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalid, m.Algorithm)
	}
	return nil
}

// Write serializes the metadata artifact to path. Producer-side only.
func Write(path string, m *BuildMetadata) error {
	if err := m.Validate(); err != nil {
		return err
	}
	a := artifact{
		Algorithm:     m.Algorithm,
		KeyDerivation: m.KeyDerivation,
		BuildID:       m.BuildID,
		IV:            hex.EncodeToString(m.IV),
		AuthTag:       hex.EncodeToString(m.AuthTag),
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata artifact: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing metadata artifact: %w", err)
	}
	return nil
}
