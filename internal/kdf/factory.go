package kdf

import (
	"fmt"

	"cask-go/internal/metadata"
)

// FromName creates a Deriver for the key-derivation identifier carried in
// the metadata artifact.
func FromName(name string) (Deriver, error) {
	switch name {
	case metadata.KeyDerivationScrypt:
		return NewScrypt(), nil
	default:
		return nil, fmt.Errorf("unknown key derivation: %q", name)
	}
}
