package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// SeedSequence draws n independent worker seeds from a single named stream.
	// Drawing all seeds up front decouples the null distribution from how
	// permutation work is later distributed across workers.
	SeedSequence(ctx context.Context, name string, baseSeed int64, n int) ([]int64, error)
}
