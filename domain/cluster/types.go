package cluster

import (
	"voxelperm/domain/core"
	"voxelperm/domain/volume"
)

// Cluster is a connected component of the suprathreshold voxel set.
// INVARIANTS:
//   - Size >= 2: single-voxel components are never reported as clusters
//   - StatValue is Size (as float64) or |Mass| depending on the active statistic
//   - Center is the voxel centroid in grid coordinates; the MNI transform
//     belongs to an external collaborator
type Cluster struct {
	ID        int32      `json:"id"`
	Size      int        `json:"size"`
	Mass      float64    `json:"mass"` // signed sum of t-statistics
	StatValue float64    `json:"stat_value"`
	Center    [3]float64 `json:"center"`
}

// NullDistribution holds one maximum cluster statistic per permutation.
// Built once by the scheduler, immutable afterward.
type NullDistribution []float64

// CorrelationData exposes the full per-permutation size and mass maxima
// for diagnostic size-mass correlation plotting by external collaborators.
type CorrelationData struct {
	Sizes  []float64 `json:"sizes"`
	Masses []float64 `json:"masses"`
}

// NullSummary is a descriptive digest of the null distribution
type NullSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// CorrectionResult is the complete outcome of one correction run.
// Constructed once per analysis, not mutated after return.
type CorrectionResult struct {
	AnalysisID core.AnalysisID `json:"analysis_id"`
	Grid       volume.Grid     `json:"grid"`

	// SigMask is the union of all significant clusters' voxels.
	// Always a subset of the valid mask.
	SigMask volume.Mask `json:"-"`

	Threshold   float64   `json:"cluster_stat_threshold"`
	SigClusters []Cluster `json:"sig_clusters"`

	// Clusters lists every observed multi-voxel cluster, significant or not
	Clusters []Cluster `json:"clusters"`

	NullDistribution NullDistribution `json:"null_distribution"`
	Correlation      CorrelationData  `json:"correlation_data"`
	NullSummary      NullSummary      `json:"null_summary"`

	ValidVoxels int `json:"valid_voxels"`

	// Message carries human-readable guidance for degenerate outcomes
	// (e.g. no clusters formed). Empty on ordinary runs.
	Message string `json:"message,omitempty"`

	ElapsedSeconds float64        `json:"elapsed_seconds"`
	ComputedAt     core.Timestamp `json:"computed_at"`
}

// Empty reports whether the run produced no observed clusters
func (r *CorrectionResult) Empty() bool {
	return len(r.Clusters) == 0
}
