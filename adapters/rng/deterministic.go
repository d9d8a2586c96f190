package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"voxelperm/ports"
)

// Deterministic implements ports.RNGPort with name-offset seeding so that
// different named operations sharing one base seed draw independent streams.
type Deterministic struct{}

// NewDeterministic creates the deterministic RNG adapter
func NewDeterministic() *Deterministic {
	return &Deterministic{}
}

var _ ports.RNGPort = (*Deterministic)(nil)

// SeededStream creates a deterministic RNG for a named operation
func (d *Deterministic) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed ^ nameOffset(name))), nil
}

// SeedSequence draws n worker seeds from a single named stream
func (d *Deterministic) SeedSequence(ctx context.Context, name string, baseSeed int64, n int) ([]int64, error) {
	stream, err := d.SeededStream(ctx, name, baseSeed)
	if err != nil {
		return nil, err
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = stream.Int63()
	}
	return seeds, nil
}

func nameOffset(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}
