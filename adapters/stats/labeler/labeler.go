package labeler

import (
	"math"

	clu "voxelperm/domain/cluster"
	"voxelperm/domain/volume"
)

// Suprathreshold builds the cluster-forming mask: voxels whose p-value falls
// strictly below the cluster threshold, restricted to the valid mask.
func Suprathreshold(pvals []float64, valid volume.Mask, threshold float64) []bool {
	supra := make([]bool, len(pvals))
	for i, p := range pvals {
		supra[i] = valid.Bits[i] && p < threshold
	}
	return supra
}

// Label assigns connected-component labels to the suprathreshold mask using
// 6-connectivity (face adjacency only). Labels are 1..n in discovery order;
// 0 marks background. Every suprathreshold voxel gets a label, including
// single-voxel components.
func Label(supra []bool, g volume.Grid) (labels []int32, n int32) {
	labels = make([]int32, len(supra))
	stack := make([]int32, 0, 64)

	zStride := int32(1)
	yStride := int32(g.Z)
	xStride := int32(g.Y * g.Z)

	for start := range supra {
		if !supra[start] || labels[start] != 0 {
			continue
		}
		n++
		labels[start] = n
		stack = append(stack[:0], int32(start))

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y, z := g.Coords(int(idx))

			// Face neighbors only; edge/corner adjacency does not connect
			if z > 0 {
				stack = visit(supra, labels, stack, idx-zStride, n)
			}
			if z < g.Z-1 {
				stack = visit(supra, labels, stack, idx+zStride, n)
			}
			if y > 0 {
				stack = visit(supra, labels, stack, idx-yStride, n)
			}
			if y < g.Y-1 {
				stack = visit(supra, labels, stack, idx+yStride, n)
			}
			if x > 0 {
				stack = visit(supra, labels, stack, idx-xStride, n)
			}
			if x < g.X-1 {
				stack = visit(supra, labels, stack, idx+xStride, n)
			}
		}
	}

	return labels, n
}

func visit(supra []bool, labels []int32, stack []int32, idx, label int32) []int32 {
	if supra[idx] && labels[idx] == 0 {
		labels[idx] = label
		stack = append(stack, idx)
	}
	return stack
}

// Tally accumulates per-label voxel counts and t-statistic sums. Index 0 of
// both slices is the background and stays zero.
func Tally(labels []int32, n int32, tvals []float64) (sizes []int32, masses []float64) {
	sizes = make([]int32, n+1)
	masses = make([]float64, n+1)
	for i, lab := range labels {
		if lab == 0 {
			continue
		}
		sizes[lab]++
		masses[lab] += tvals[i]
	}
	return sizes, masses
}

// Measure builds the observed cluster list from a label map. Single-voxel
// components are discarded entirely; they remain in the label map but can
// never rank as clusters. StatValue is the voxel count for the size
// statistic and |mass| for the mass statistic.
func Measure(labels []int32, n int32, tvals []float64, g volume.Grid, useMass bool) []clu.Cluster {
	sizes, masses := Tally(labels, n, tvals)

	// Voxel centroids in grid coordinates
	cx := make([]float64, n+1)
	cy := make([]float64, n+1)
	cz := make([]float64, n+1)
	for i, lab := range labels {
		if lab == 0 {
			continue
		}
		x, y, z := g.Coords(i)
		cx[lab] += float64(x)
		cy[lab] += float64(y)
		cz[lab] += float64(z)
	}

	clusters := make([]clu.Cluster, 0, n)
	for lab := int32(1); lab <= n; lab++ {
		size := int(sizes[lab])
		if size < 2 {
			continue // single voxels can never be clusters
		}
		stat := float64(size)
		if useMass {
			stat = math.Abs(masses[lab])
		}
		inv := 1.0 / float64(size)
		clusters = append(clusters, clu.Cluster{
			ID:        lab,
			Size:      size,
			Mass:      masses[lab],
			StatValue: stat,
			Center:    [3]float64{cx[lab] * inv, cy[lab] * inv, cz[lab] * inv},
		})
	}
	return clusters
}

// MaxStats extracts the maximum multi-voxel cluster size and |mass| from a
// tally. Both are zero when no component has two or more voxels.
func MaxStats(sizes []int32, masses []float64) (maxSize, maxMass float64) {
	for lab := 1; lab < len(sizes); lab++ {
		if sizes[lab] < 2 {
			continue
		}
		if s := float64(sizes[lab]); s > maxSize {
			maxSize = s
		}
		if m := math.Abs(masses[lab]); m > maxMass {
			maxMass = m
		}
	}
	return maxSize, maxMass
}
