package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelperm/adapters/rng"
	"voxelperm/domain/stats"
	"voxelperm/domain/volume"
	"voxelperm/internal"
	apperrors "voxelperm/internal/errors"
	"voxelperm/internal/testkit"
)

func newTestEngine() *Engine {
	return NewEngine(rng.NewDeterministic(), internal.NewLogger(internal.LogLevelError))
}

func TestCorrect_BlockScenario(t *testing.T) {
	grid, err := volume.NewGrid(10, 10, 10)
	require.NoError(t, err)

	block := testkit.Block{X0: 3, Y0: 3, Z0: 3, X1: 6, Y1: 6, Z1: 6}
	groupA := testkit.BlockGroup(grid, 10, block, 5.0, 0.1, 1001)
	groupB := testkit.BlockGroup(grid, 10, block, 0.0, 0.1, 2002)

	params := stats.DefaultParams()
	params.ClusterThreshold = 0.01
	params.NPermutations = 200
	params.Alpha = 0.05
	params.NJobs = 4

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, params)
	require.NoError(t, err)

	assert.Equal(t, 27, res.ValidVoxels)
	require.Len(t, res.SigClusters, 1, "expected exactly one significant cluster")
	assert.Equal(t, 27, res.SigClusters[0].Size)
	assert.Equal(t, 27, res.SigMask.Count(), "sig mask must cover exactly the block")
	assert.Len(t, res.NullDistribution, 200)
	assert.Len(t, res.Correlation.Sizes, 200)
	assert.Len(t, res.Correlation.Masses, 200)

	// Every significant voxel lies inside the block and inside the valid mask
	valid := volume.ValidMask(groupA, groupB)
	assert.True(t, res.SigMask.SubsetOf(valid), "sig mask must be a subset of the valid mask")
	for i, on := range res.SigMask.Bits {
		if on {
			x, y, z := grid.Coords(i)
			assert.True(t, block.Contains(x, y, z), "voxel (%d,%d,%d) outside block", x, y, z)
		}
	}
}

func TestCorrect_EmptyInput(t *testing.T) {
	grid, err := volume.NewGrid(8, 8, 8)
	require.NoError(t, err)

	groupA := testkit.ConstantGroup(grid, 5, 0)
	groupB := testkit.ConstantGroup(grid, 5, 0)

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, stats.DefaultParams())
	require.NoError(t, err, "all-zero input is degenerate data, not an error")

	assert.Equal(t, 0, res.ValidVoxels)
	assert.Empty(t, res.SigClusters)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.NullDistribution)
	assert.Empty(t, res.Correlation.Sizes)
	assert.Empty(t, res.Correlation.Masses)
	assert.Zero(t, res.SigMask.Count())
	assert.NotEmpty(t, res.Message)
}

func TestCorrect_NoClustersHint(t *testing.T) {
	grid, err := volume.NewGrid(8, 8, 8)
	require.NoError(t, err)

	// Same distribution in both groups: no suprathreshold voxels expected
	groupA := testkit.NoisyGroup(grid, 5, 1.0, 1.0, 11)
	groupB := testkit.NoisyGroup(grid, 5, 1.0, 1.0, 22)

	params := stats.DefaultParams()
	params.ClusterThreshold = 0.0001 // so strict that nothing survives

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, params)
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.SigClusters)
	assert.Contains(t, res.Message, "cluster_threshold")
}

func TestCorrect_SingletonNeverSignificant(t *testing.T) {
	grid, err := volume.NewGrid(6, 6, 6)
	require.NoError(t, err)

	// One isolated voxel with an enormous group difference
	single := testkit.Block{X0: 2, Y0: 2, Z0: 2, X1: 3, Y1: 3, Z1: 3}
	groupA := testkit.BlockGroup(grid, 8, single, 50.0, 0.1, 31)
	groupB := testkit.BlockGroup(grid, 8, single, 0.0, 0.1, 32)

	params := stats.DefaultParams()
	params.NPermutations = 100

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, params)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ValidVoxels)
	assert.Empty(t, res.Clusters, "a single voxel can never be a cluster")
	assert.Empty(t, res.SigClusters)
	assert.Zero(t, res.SigMask.Count())
}

func TestCorrect_PairedSignFlip(t *testing.T) {
	grid, err := volume.NewGrid(10, 10, 10)
	require.NoError(t, err)

	block := testkit.Block{X0: 2, Y0: 2, Z0: 2, X1: 5, Y1: 5, Z1: 5}
	// True mean difference of 10 across 6 matched pairs, low noise
	groupA := testkit.BlockGroup(grid, 6, block, 12.0, 0.2, 71)
	groupB := testkit.BlockGroup(grid, 6, block, 2.0, 0.2, 72)

	params := stats.DefaultParams()
	params.TestType = stats.TestPaired
	params.Alternative = stats.AltGreater
	params.NPermutations = 500
	params.Alpha = 0.05
	params.NJobs = 4

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, params)
	require.NoError(t, err)

	require.NotEmpty(t, res.SigClusters, "paired permutation must detect the block effect")
	assert.Equal(t, 27, res.SigClusters[0].Size)
}

func TestCorrect_SignificanceCap(t *testing.T) {
	grid, err := volume.NewGrid(10, 10, 10)
	require.NoError(t, err)

	// Two disjoint elevated blocks in group A
	blockA := testkit.Block{X0: 0, Y0: 0, Z0: 0, X1: 3, Y1: 3, Z1: 3}
	blockB := testkit.Block{X0: 6, Y0: 6, Z0: 6, X1: 9, Y1: 9, Z1: 9}

	build := func(meanA, meanB float64, seed int64) volume.Group {
		ga := testkit.BlockGroup(grid, 8, blockA, meanA, 0.1, seed)
		gb := testkit.BlockGroup(grid, 8, blockB, meanB, 0.1, seed+1000)
		vols := make([]volume.Volume, 8)
		for s := 0; s < 8; s++ {
			vol := volume.NewVolume(grid)
			for i := range vol.Data {
				vol.Data[i] = ga.Volumes[s].Data[i] + gb.Volumes[s].Data[i]
			}
			vols[s] = vol
		}
		grp, err := volume.NewGroup(vols)
		require.NoError(t, err)
		return grp
	}

	groupA := build(5.0, 5.0, 41)
	groupB := build(0.0, 0.0, 43)

	params := stats.DefaultParams()
	params.NPermutations = 100
	params.MaxClustersChecked = 1

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, params)
	require.NoError(t, err)

	require.Len(t, res.Clusters, 2, "both blocks form observed clusters")
	assert.Len(t, res.SigClusters, 1, "cap restricts the significance pass to the first cluster")
}

func TestCorrect_ConfigurationErrors(t *testing.T) {
	grid, err := volume.NewGrid(4, 4, 4)
	require.NoError(t, err)
	group5 := testkit.NoisyGroup(grid, 5, 1.0, 0.5, 1)
	groupSmall := testkit.NoisyGroup(grid, 3, 1.0, 0.5, 2)
	engine := newTestEngine()
	ctx := context.Background()

	t.Run("invalid cluster stat", func(t *testing.T) {
		params := stats.DefaultParams()
		params.ClusterStat = "volume"
		_, err := engine.Correct(ctx, group5, groupSmall, params)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	})

	t.Run("paired with mismatched sizes", func(t *testing.T) {
		params := stats.DefaultParams()
		params.TestType = stats.TestPaired
		_, err := engine.Correct(ctx, group5, groupSmall, params)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	})

	t.Run("alpha out of range", func(t *testing.T) {
		params := stats.DefaultParams()
		params.Alpha = 1.5
		_, err := engine.Correct(ctx, group5, groupSmall, params)
		require.Error(t, err)
	})

	t.Run("mismatched grids", func(t *testing.T) {
		otherGrid, err := volume.NewGrid(5, 5, 5)
		require.NoError(t, err)
		other := testkit.NoisyGroup(otherGrid, 5, 1.0, 0.5, 3)
		_, err = engine.Correct(ctx, group5, other, stats.DefaultParams())
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	})
}

func TestSummarize(t *testing.T) {
	grid, err := volume.NewGrid(10, 10, 10)
	require.NoError(t, err)

	block := testkit.Block{X0: 3, Y0: 3, Z0: 3, X1: 6, Y1: 6, Z1: 6}
	groupA := testkit.BlockGroup(grid, 10, block, 5.0, 0.1, 1001)
	groupB := testkit.BlockGroup(grid, 10, block, 0.0, 0.1, 2002)

	params := stats.DefaultParams()
	params.NPermutations = 100

	res, err := newTestEngine().Correct(context.Background(), groupA, groupB, params)
	require.NoError(t, err)

	sum := Summarize(res, params, 5)
	assert.Equal(t, res.AnalysisID.String(), sum.AnalysisID)
	assert.Equal(t, 27, sum.ValidVoxels)
	assert.Equal(t, 1, sum.SigClusters)
	assert.Equal(t, 27, sum.SigVoxels)
	assert.LessOrEqual(t, len(sum.TopClusters), 5)
	require.NotEmpty(t, sum.TopClusters)
	assert.Equal(t, 27, sum.TopClusters[0].Size)
}
