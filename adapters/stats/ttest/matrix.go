package ttest

import (
	"voxelperm/domain/volume"
)

// Matrix holds the valid-mask voxel measurements of both groups in a dense
// voxels-by-subjects layout. Rows are valid voxels in ascending linear-index
// order; columns 0..N1-1 belong to group 1, N1..N1+N2-1 to group 2. Values
// are stored as float32 to bound memory on large inputs; all arithmetic is
// float64.
//
// A Matrix is read-only after extraction and may be shared across any number
// of concurrent permutation workers.
type Matrix struct {
	Grid volume.Grid
	Lin  []int32 // linear index of each voxel row
	N1   int
	N2   int
	Data []float32 // len(Lin) * (N1 + N2), row-major
}

// Extract pulls the valid-mask voxels of both groups into a dense matrix.
// Only voxels set in valid are extracted; everything else keeps its default
// (t=0, p=1) in the scattered result volumes.
func Extract(groupA, groupB volume.Group, valid volume.Mask) *Matrix {
	lin := valid.Indices()
	n1, n2 := groupA.N(), groupB.N()
	width := n1 + n2

	data := make([]float32, len(lin)*width)
	for v, idx := range lin {
		row := data[v*width : (v+1)*width]
		for s, vol := range groupA.Volumes {
			row[s] = float32(vol.Data[idx])
		}
		for s, vol := range groupB.Volumes {
			row[n1+s] = float32(vol.Data[idx])
		}
	}

	return &Matrix{
		Grid: groupA.Grid,
		Lin:  lin,
		N1:   n1,
		N2:   n2,
		Data: data,
	}
}

// Voxels returns the number of extracted voxel rows
func (m *Matrix) Voxels() int {
	return len(m.Lin)
}

// Subjects returns the total subject count across both groups
func (m *Matrix) Subjects() int {
	return m.N1 + m.N2
}

// Row returns the subject values for one voxel row
func (m *Matrix) Row(v int) []float32 {
	width := m.Subjects()
	return m.Data[v*width : (v+1)*width]
}

// Scatter writes per-row values into a full-grid flat buffer at the matrix's
// linear indices. The destination keeps its existing values elsewhere, so the
// caller controls the default (1.0 for p-values, 0.0 for t-statistics).
func (m *Matrix) Scatter(vals []float64, dst []float64) {
	for v, idx := range m.Lin {
		dst[idx] = vals[v]
	}
}
