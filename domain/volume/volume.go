package volume

import "fmt"

// Volume holds one subject's voxel values as a flat buffer over a Grid.
// A zero value means "no measurement at this voxel", not a physical zero.
type Volume struct {
	Grid Grid
	Data []float64
}

// NewVolume creates an all-zero volume over the grid
func NewVolume(g Grid) Volume {
	return Volume{Grid: g, Data: make([]float64, g.Len())}
}

// FromData wraps an existing flat buffer, validating its length
func FromData(g Grid, data []float64) (Volume, error) {
	if len(data) != g.Len() {
		return Volume{}, fmt.Errorf("volume data length %d does not match grid %s (%d voxels)", len(data), g, g.Len())
	}
	return Volume{Grid: g, Data: data}, nil
}

// At returns the value at grid coordinates
func (v Volume) At(x, y, z int) float64 {
	return v.Data[v.Grid.Index(x, y, z)]
}

// Set assigns the value at grid coordinates
func (v Volume) Set(x, y, z int, val float64) {
	v.Data[v.Grid.Index(x, y, z)] = val
}

// Group is an ordered sequence of subject volumes sharing one grid
type Group struct {
	Grid    Grid
	Volumes []Volume
}

// NewGroup assembles subject volumes into a group, validating shape consistency
func NewGroup(vols []Volume) (Group, error) {
	if len(vols) == 0 {
		return Group{}, fmt.Errorf("group must contain at least one subject volume")
	}
	grid := vols[0].Grid
	for i, v := range vols {
		if !v.Grid.Equal(grid) {
			return Group{}, fmt.Errorf("subject %d grid %s does not match group grid %s", i, v.Grid, grid)
		}
		if len(v.Data) != grid.Len() {
			return Group{}, fmt.Errorf("subject %d has %d voxels, grid %s requires %d", i, len(v.Data), grid, grid.Len())
		}
	}
	return Group{Grid: grid, Volumes: vols}, nil
}

// N returns the number of subjects in the group
func (g Group) N() int {
	return len(g.Volumes)
}
