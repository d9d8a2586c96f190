package testkit

import (
	"math/rand"

	"voxelperm/domain/volume"
)

// Block is an axis-aligned sub-region of a grid, half-open on each axis
type Block struct {
	X0, Y0, Z0 int
	X1, Y1, Z1 int
}

// Contains reports whether the coordinates fall inside the block
func (b Block) Contains(x, y, z int) bool {
	return x >= b.X0 && x < b.X1 && y >= b.Y0 && y < b.Y1 && z >= b.Z0 && z < b.Z1
}

// Len returns the number of voxels in the block
func (b Block) Len() int {
	return (b.X1 - b.X0) * (b.Y1 - b.Y0) * (b.Z1 - b.Z0)
}

// BlockGroup generates n subject volumes with mean + Gaussian noise inside
// the block and exact zero (no measurement) everywhere else.
func BlockGroup(g volume.Grid, n int, b Block, mean, noiseSD float64, seed int64) volume.Group {
	rng := rand.New(rand.NewSource(seed))
	vols := make([]volume.Volume, n)
	for s := 0; s < n; s++ {
		vol := volume.NewVolume(g)
		for x := b.X0; x < b.X1; x++ {
			for y := b.Y0; y < b.Y1; y++ {
				for z := b.Z0; z < b.Z1; z++ {
					vol.Set(x, y, z, mean+rng.NormFloat64()*noiseSD)
				}
			}
		}
		vols[s] = vol
	}
	grp, err := volume.NewGroup(vols)
	if err != nil {
		panic(err) // generator bug, not a test condition
	}
	return grp
}

// NoisyGroup generates n subject volumes with mean + Gaussian noise at every
// voxel of the grid.
func NoisyGroup(g volume.Grid, n int, mean, noiseSD float64, seed int64) volume.Group {
	full := Block{X0: 0, Y0: 0, Z0: 0, X1: g.X, Y1: g.Y, Z1: g.Z}
	return BlockGroup(g, n, full, mean, noiseSD, seed)
}

// ConstantGroup generates n identical subject volumes with every voxel set
// to value. With value 0 this is the all-invalid empty-input scenario.
func ConstantGroup(g volume.Grid, n int, value float64) volume.Group {
	vols := make([]volume.Volume, n)
	for s := 0; s < n; s++ {
		vol := volume.NewVolume(g)
		for i := range vol.Data {
			vol.Data[i] = value
		}
		vols[s] = vol
	}
	grp, err := volume.NewGroup(vols)
	if err != nil {
		panic(err)
	}
	return grp
}
