package volume

// Mask is a boolean selection over a grid's voxels, stored flat
type Mask struct {
	Grid Grid
	Bits []bool
}

// NewMask creates an all-false mask over the grid
func NewMask(g Grid) Mask {
	return Mask{Grid: g, Bits: make([]bool, g.Len())}
}

// Count returns the number of set voxels
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Indices returns the linear indices of all set voxels, in ascending order
func (m Mask) Indices() []int32 {
	idx := make([]int32, 0, m.Count())
	for i, b := range m.Bits {
		if b {
			idx = append(idx, int32(i))
		}
	}
	return idx
}

// SubsetOf reports whether every set voxel of m is also set in other
func (m Mask) SubsetOf(other Mask) bool {
	if !m.Grid.Equal(other.Grid) {
		return false
	}
	for i, b := range m.Bits {
		if b && !other.Bits[i] {
			return false
		}
	}
	return true
}

// ValidMask marks voxels where at least one subject in any group has a
// non-zero value. Only these voxels carry measurements worth testing.
func ValidMask(groups ...Group) Mask {
	if len(groups) == 0 {
		return Mask{}
	}
	mask := NewMask(groups[0].Grid)
	for _, grp := range groups {
		for _, vol := range grp.Volumes {
			for i, v := range vol.Data {
				if v != 0 {
					mask.Bits[i] = true
				}
			}
		}
	}
	return mask
}
