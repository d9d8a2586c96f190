package volume

import "fmt"

// Grid describes the 3D voxel lattice shared by all subjects in an analysis.
// Flat buffers over a Grid are addressed by the linear index z + Z*(y + Y*x).
type Grid struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// NewGrid creates a grid and validates its dimensions
func NewGrid(x, y, z int) (Grid, error) {
	g := Grid{X: x, Y: y, Z: z}
	if x <= 0 || y <= 0 || z <= 0 {
		return g, fmt.Errorf("grid dimensions must be positive, got (%d, %d, %d)", x, y, z)
	}
	return g, nil
}

// Len returns the total number of voxels
func (g Grid) Len() int {
	return g.X * g.Y * g.Z
}

// Index converts grid coordinates to a linear index
func (g Grid) Index(x, y, z int) int {
	return z + g.Z*(y+g.Y*x)
}

// Coords converts a linear index back to grid coordinates
func (g Grid) Coords(idx int) (x, y, z int) {
	z = idx % g.Z
	idx /= g.Z
	y = idx % g.Y
	x = idx / g.Y
	return x, y, z
}

// Contains reports whether the coordinates fall inside the grid
func (g Grid) Contains(x, y, z int) bool {
	return x >= 0 && x < g.X && y >= 0 && y < g.Y && z >= 0 && z < g.Z
}

// Equal reports whether two grids have identical dimensions
func (g Grid) Equal(other Grid) bool {
	return g.X == other.X && g.Y == other.Y && g.Z == other.Z
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%dx%d", g.X, g.Y, g.Z)
}
