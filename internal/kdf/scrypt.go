// Package kdf derives the bundle key from the build identifier shipped in
// the metadata artifact. The key is never stored: it is re-derived at every
// startup, handed to the decryptor, and zeroed as soon as the decryptor
// returns.
package kdf

import (
	"fmt"

	"golang.org/x/crypto/scrypt"

	"cask-go/internal/cask"
)

// Deriver turns a build identifier into the symmetric bundle key.
// Derivation is deterministic: the same build ID always yields the same
// key. There is no "wrong" build ID at this layer: any string derives a
// key, and correctness is established downstream by the AEAD tag.
type Deriver interface {
	DeriveKey(buildID string) ([]byte, error)
}

// bundleKeySalt namespaces the derivation to this application. It is a
// fixed literal, not a secret: changing it would break every bundle already
// produced, so it stays pinned even though the build ID is the only
// secret-equivalent input.
const bundleKeySalt = "cask/bundle-key/v1"

// scrypt cost parameters. Pinned: producer and consumer must derive the
// same key for the same build ID across releases.
const (
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1

	// KeyLen is the derived key size in bytes (AES-256).
	KeyLen = 32
)

// Scrypt derives keys with the scrypt memory-hard KDF.
type Scrypt struct{}

var _ Deriver = (*Scrypt)(nil)

// NewScrypt creates a Scrypt deriver with the pinned application parameters.
func NewScrypt() *Scrypt { return &Scrypt{} }

// DeriveKey derives the 32-byte bundle key for buildID. It fails only on
// parameter or resource errors from the KDF itself.
func (*Scrypt) DeriveKey(buildID string) ([]byte, error) {
	key, err := scrypt.Key([]byte(buildID), []byte(bundleKeySalt), scryptN, scryptR, scryptP, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: scrypt: %v", cask.ErrKeyDerivation, err)
	}
	return key, nil
}

// Zero overwrites key material in place. Callers zero the derived key as
// soon as the decryptor returns, successfully or not.
func Zero(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
