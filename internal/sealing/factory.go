package sealing

import (
	"fmt"

	"cask-go/internal/metadata"
)

// FromAlgorithm creates the Suite for the algorithm identifier carried in
// the metadata artifact.
func FromAlgorithm(algorithm string) (Suite, error) {
	switch algorithm {
	case metadata.AlgorithmAESGCM:
		return NewAESGCM(), nil
	case metadata.AlgorithmAge:
		return NewAge(), nil
	default:
		return nil, fmt.Errorf("unknown sealing algorithm: %q", algorithm)
	}
}
