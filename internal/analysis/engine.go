package analysis

import (
	"context"
	"fmt"
	"time"

	"voxelperm/adapters/stats/labeler"
	"voxelperm/adapters/stats/permutation"
	"voxelperm/adapters/stats/ttest"
	clu "voxelperm/domain/cluster"
	"voxelperm/domain/core"
	"voxelperm/domain/stats"
	"voxelperm/domain/volume"
	"voxelperm/internal"
	"voxelperm/internal/errors"
	"voxelperm/ports"
)

// Engine runs the cluster-based permutation correction pipeline:
// valid-mask extraction, observed t-test, cluster labeling, seeded
// permutation sweep, and FWER thresholding.
type Engine struct {
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewEngine creates an engine with the given RNG port and logger
func NewEngine(rng ports.RNGPort, logger *internal.Logger) *Engine {
	return &Engine{rng: rng, logger: logger}
}

var _ ports.ClusterCorrector = (*Engine)(nil)

// Correct performs the full correction run for two subject groups.
// Configuration errors fail before any computation; degenerate data (empty
// valid mask, zero observed clusters) returns a well-formed empty result.
func (e *Engine) Correct(ctx context.Context, groupA, groupB volume.Group, params stats.Params) (*clu.CorrectionResult, error) {
	start := time.Now()

	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid correction parameters")
	}
	if err := validateGroups(groupA, groupB, params.TestType); err != nil {
		return nil, err
	}

	grid := groupA.Grid
	res := &clu.CorrectionResult{
		AnalysisID:       core.NewAnalysisID(),
		Grid:             grid,
		SigMask:          volume.NewMask(grid),
		SigClusters:      []clu.Cluster{},
		Clusters:         []clu.Cluster{},
		NullDistribution: clu.NullDistribution{},
		Correlation:      clu.CorrelationData{Sizes: []float64{}, Masses: []float64{}},
		ComputedAt:       core.Now(),
	}

	valid := volume.ValidMask(groupA, groupB)
	res.ValidVoxels = valid.Count()
	if res.ValidVoxels == 0 {
		res.Message = "no valid voxels: every subject is zero everywhere"
		res.ElapsedSeconds = time.Since(start).Seconds()
		e.logger.Info("correction %s: %s", res.AnalysisID, res.Message)
		return res, nil
	}

	e.logger.Info("correction %s: %d valid voxels on grid %s, %s test, %s statistic",
		res.AnalysisID, res.ValidVoxels, grid, params.TestType, params.ClusterStat)

	mat := ttest.Extract(groupA, groupB, valid)

	// Observed pass
	var tv, pv []float64
	if params.TestType == stats.TestPaired {
		tv, pv = ttest.Paired(mat, nil, params.Alternative)
	} else {
		tv, pv = ttest.Pooled(mat, nil, params.Alternative)
	}

	pvol := make([]float64, grid.Len())
	for i := range pvol {
		pvol[i] = 1
	}
	tvol := make([]float64, grid.Len())
	mat.Scatter(pv, pvol)
	mat.Scatter(tv, tvol)

	supra := labeler.Suprathreshold(pvol, valid, params.ClusterThreshold)
	labels, nLabels := labeler.Label(supra, grid)
	observed := labeler.Measure(labels, nLabels, tvol, grid, params.ClusterStat == stats.StatMass)
	res.Clusters = observed

	if len(observed) == 0 {
		res.Message = fmt.Sprintf("no multi-voxel clusters formed at p < %g; consider increasing cluster_threshold", params.ClusterThreshold)
		res.ElapsedSeconds = time.Since(start).Seconds()
		e.logger.Info("correction %s: %s", res.AnalysisID, res.Message)
		return res, nil
	}

	e.logger.Info("correction %s: %d observed clusters, running %d permutations",
		res.AnalysisID, len(observed), params.NPermutations)

	cfg := permutation.Config{
		TestType:         params.TestType,
		ClusterThreshold: params.ClusterThreshold,
		Alternative:      params.Alternative,
		ClusterStat:      params.ClusterStat,
	}
	null, err := permutation.NewScheduler(e.rng, e.logger).Run(ctx, mat, cfg, params.NPermutations, params.NJobs, params.Seed, params.SavePermutationLog)
	if err != nil {
		return nil, errors.Wrap(err, "permutation sweep failed")
	}

	// The extracted matrix can be hundreds of MB; it must not outlive the
	// permutation phase.
	mat = nil

	res.NullDistribution = null.Stats
	res.Correlation = clu.CorrelationData{Sizes: null.Sizes, Masses: null.Masses}
	res.NullSummary = summarizeNull(null.Stats)

	res.Threshold = Threshold(null.Stats, params.Alpha)
	sig, sigMask := significantClusters(observed, labels, res.Threshold, params.MaxClustersChecked, grid, e.logger)
	res.SigClusters = sig
	res.SigMask = sigMask

	res.ElapsedSeconds = time.Since(start).Seconds()
	e.logger.Info("correction %s: %s threshold %.3f, %d/%d clusters significant, %d significant voxels (%.2fs)",
		res.AnalysisID, statName(params.ClusterStat), res.Threshold, len(sig), len(observed), sigMask.Count(), res.ElapsedSeconds)

	return res, nil
}

// validateGroups checks shape and sample-size constraints up front
func validateGroups(groupA, groupB volume.Group, testType stats.TestType) error {
	if groupA.N() == 0 || groupB.N() == 0 {
		return errors.InvalidInput("both groups must contain at least one subject")
	}
	if !groupA.Grid.Equal(groupB.Grid) {
		return errors.InvalidInput(fmt.Sprintf("group grids differ: %s vs %s", groupA.Grid, groupB.Grid))
	}
	if testType == stats.TestPaired {
		if groupA.N() != groupB.N() {
			return errors.ConfigInvalid(fmt.Sprintf("paired test requires matched group sizes, got %d and %d", groupA.N(), groupB.N()))
		}
		if groupA.N() < 2 {
			return errors.InvalidInput("paired test requires at least 2 matched pairs")
		}
		return nil
	}
	if groupA.N() < 2 || groupB.N() < 2 {
		return errors.InvalidInput("unpaired test requires at least 2 subjects per group")
	}
	return nil
}
