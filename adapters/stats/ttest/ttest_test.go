package ttest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelperm/domain/stats"
	"voxelperm/domain/volume"
)

// matrixFromValues builds an extracted matrix where voxel v of each subject
// holds the given value. Values must be non-zero to stay in the valid mask.
func matrixFromValues(t *testing.T, g1, g2 [][]float64) *Matrix {
	t.Helper()
	nVoxels := len(g1[0])
	grid, err := volume.NewGrid(1, 1, nVoxels)
	require.NoError(t, err)

	build := func(subjects [][]float64) volume.Group {
		vols := make([]volume.Volume, len(subjects))
		for s, vals := range subjects {
			vol := volume.NewVolume(grid)
			copy(vol.Data, vals)
			vols[s] = vol
		}
		grp, err := volume.NewGroup(vols)
		require.NoError(t, err)
		return grp
	}

	groupA, groupB := build(g1), build(g2)
	valid := volume.ValidMask(groupA, groupB)
	require.Equal(t, nVoxels, valid.Count())
	return Extract(groupA, groupB, valid)
}

// subjectColumns transposes per-subject voxel rows: subjects[s][v]
func subjectColumns(values ...[]float64) [][]float64 {
	return values
}

func TestPooled_MatchesReferenceValue(t *testing.T) {
	// Group 1: 1..5, group 2: 2,4,..,10 at a single voxel.
	// m1=3, m2=6, v1=2.5, v2=10, pooled=(4*2.5+4*10)/8=6.25,
	// se=sqrt(6.25*(1/5+1/5))=sqrt(2.5), t=-3/sqrt(2.5).
	m := matrixFromValues(t,
		subjectColumns([]float64{1}, []float64{2}, []float64{3}, []float64{4}, []float64{5}),
		subjectColumns([]float64{2}, []float64{4}, []float64{6}, []float64{8}, []float64{10}),
	)

	tv, pv := Pooled(m, nil, stats.AltTwoSided)
	require.Len(t, tv, 1)

	want := -3.0 / math.Sqrt(2.5)
	assert.InDelta(t, want, tv[0], 1e-9)
	// df=8, |t|=1.897: two-sided p sits between 0.05 and 0.10
	assert.Greater(t, pv[0], 0.05)
	assert.Less(t, pv[0], 0.10)
}

func TestPooled_ZeroVarianceBothGroups(t *testing.T) {
	// Identical constant values in both groups: se==0 by the pooled formula,
	// so the voxel gets t=0, p=1 rather than an error or NaN.
	m := matrixFromValues(t,
		subjectColumns([]float64{5}, []float64{5}, []float64{5}),
		subjectColumns([]float64{5}, []float64{5}, []float64{5}),
	)

	for _, alt := range []stats.Alternative{stats.AltTwoSided, stats.AltGreater, stats.AltLess} {
		tv, pv := Pooled(m, nil, alt)
		assert.Zero(t, tv[0], "alternative %s", alt)
		assert.Equal(t, 1.0, pv[0], "alternative %s", alt)
	}
}

func TestPooled_ZeroVarianceDifferentMeans(t *testing.T) {
	// Zero spread but different means still falls under the se==0 rule
	m := matrixFromValues(t,
		subjectColumns([]float64{5}, []float64{5}),
		subjectColumns([]float64{3}, []float64{3}),
	)
	tv, pv := Pooled(m, nil, stats.AltTwoSided)
	assert.Zero(t, tv[0])
	assert.Equal(t, 1.0, pv[0])
}

func TestPooled_Alternatives(t *testing.T) {
	m := matrixFromValues(t,
		subjectColumns([]float64{10}, []float64{11}, []float64{12}, []float64{13}),
		subjectColumns([]float64{1}, []float64{2}, []float64{3}, []float64{4}),
	)

	tvTwo, pvTwo := Pooled(m, nil, stats.AltTwoSided)
	_, pvGreater := Pooled(m, nil, stats.AltGreater)
	_, pvLess := Pooled(m, nil, stats.AltLess)

	assert.Positive(t, tvTwo[0])
	// Group 1 mean is larger: greater is the supported direction
	assert.Less(t, pvGreater[0], pvTwo[0])
	assert.Greater(t, pvLess[0], 0.9)
	assert.InDelta(t, 1.0, pvGreater[0]+pvLess[0], 1e-12)
}

func TestPooled_PermutationReordersColumns(t *testing.T) {
	m := matrixFromValues(t,
		subjectColumns([]float64{1}, []float64{2}, []float64{3}),
		subjectColumns([]float64{7}, []float64{8}, []float64{9}),
	)

	// Identity permutation must reproduce the observed grouping
	identity := []int{0, 1, 2, 3, 4, 5}
	tvObs, pvObs := Pooled(m, nil, stats.AltTwoSided)
	tvID, pvID := Pooled(m, identity, stats.AltTwoSided)
	assert.Equal(t, tvObs, tvID)
	assert.Equal(t, pvObs, pvID)

	// Swapping the groups flips the sign of t
	swap := []int{3, 4, 5, 0, 1, 2}
	tvSwap, pvSwap := Pooled(m, swap, stats.AltTwoSided)
	assert.InDelta(t, -tvObs[0], tvSwap[0], 1e-12)
	assert.InDelta(t, pvObs[0], pvSwap[0], 1e-12)
}

func TestPaired_MatchesReferenceValue(t *testing.T) {
	// Differences 1..6: t = mean(d)/(sd(d)/sqrt(n)) = sqrt(21), df=5
	m := matrixFromValues(t,
		subjectColumns([]float64{11}, []float64{12}, []float64{13}, []float64{14}, []float64{15}, []float64{16}),
		subjectColumns([]float64{10}, []float64{10}, []float64{10}, []float64{10}, []float64{10}, []float64{10}),
	)

	tv, pv := Paired(m, nil, stats.AltTwoSided)
	assert.InDelta(t, math.Sqrt(21), tv[0], 1e-9)
	assert.Less(t, pv[0], 0.01)
}

func TestPaired_ZeroVarianceDifferences(t *testing.T) {
	// Constant difference in every pair: sd(d)==0, so t=0, p=1
	m := matrixFromValues(t,
		subjectColumns([]float64{4}, []float64{5}, []float64{6}),
		subjectColumns([]float64{2}, []float64{3}, []float64{4}),
	)
	tv, pv := Paired(m, nil, stats.AltTwoSided)
	assert.Zero(t, tv[0])
	assert.Equal(t, 1.0, pv[0])
}

func TestPaired_SignFlipsNegateDifferences(t *testing.T) {
	m := matrixFromValues(t,
		subjectColumns([]float64{5}, []float64{7}, []float64{6}, []float64{8}),
		subjectColumns([]float64{1}, []float64{2}, []float64{3}, []float64{4}),
	)

	allPlus := []int8{1, 1, 1, 1}
	allMinus := []int8{-1, -1, -1, -1}

	tvObs, _ := Paired(m, nil, stats.AltTwoSided)
	tvPlus, _ := Paired(m, allPlus, stats.AltTwoSided)
	tvMinus, _ := Paired(m, allMinus, stats.AltTwoSided)

	assert.Equal(t, tvObs, tvPlus)
	assert.InDelta(t, -tvObs[0], tvMinus[0], 1e-12)
}

func TestExtract_OnlyValidVoxels(t *testing.T) {
	grid, err := volume.NewGrid(2, 2, 2)
	require.NoError(t, err)

	// One subject per group; only two voxels carry measurements
	volA := volume.NewVolume(grid)
	volA.Set(0, 0, 0, 1.5)
	volB := volume.NewVolume(grid)
	volB.Set(1, 1, 1, -2.5)

	groupA, err := volume.NewGroup([]volume.Volume{volA})
	require.NoError(t, err)
	groupB, err := volume.NewGroup([]volume.Volume{volB})
	require.NoError(t, err)

	valid := volume.ValidMask(groupA, groupB)
	m := Extract(groupA, groupB, valid)

	require.Equal(t, 2, m.Voxels())
	assert.Equal(t, []int32{int32(grid.Index(0, 0, 0)), int32(grid.Index(1, 1, 1))}, m.Lin)
	assert.Equal(t, float32(1.5), m.Row(0)[0])
	assert.Equal(t, float32(-2.5), m.Row(1)[1])
}

func TestScatter_WritesAtLinearIndices(t *testing.T) {
	grid, err := volume.NewGrid(2, 2, 2)
	require.NoError(t, err)

	m := &Matrix{Grid: grid, Lin: []int32{1, 6}, N1: 1, N2: 1}
	dst := make([]float64, grid.Len())
	for i := range dst {
		dst[i] = 1 // p-value default
	}

	m.Scatter([]float64{0.001, 0.002}, dst)
	assert.Equal(t, 0.001, dst[1])
	assert.Equal(t, 0.002, dst[6])
	assert.Equal(t, 1.0, dst[0])
	assert.Equal(t, 1.0, dst[7])
}
