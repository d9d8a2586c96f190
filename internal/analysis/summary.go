package analysis

import (
	clu "voxelperm/domain/cluster"
	"voxelperm/domain/stats"
	"voxelperm/domain/volume"
)

// Summary is the textual payload handed to the report-generation
// collaborator: counts, the top clusters, and the null digest.
type Summary struct {
	AnalysisID       string          `json:"analysis_id"`
	Grid             volume.Grid     `json:"grid"`
	Params           stats.Params    `json:"params"`
	ValidVoxels      int             `json:"valid_voxels"`
	ObservedClusters int             `json:"observed_clusters"`
	SigClusters      int             `json:"sig_clusters"`
	SigVoxels        int             `json:"sig_voxels"`
	Threshold        float64         `json:"cluster_stat_threshold"`
	TopClusters      []clu.Cluster   `json:"top_clusters"`
	Null             clu.NullSummary `json:"null_summary"`
	Message          string          `json:"message,omitempty"`
	ElapsedSeconds   float64         `json:"elapsed_seconds"`
}

// Summarize condenses a correction result into the report payload,
// keeping at most topK clusters ordered by statistic value.
func Summarize(res *clu.CorrectionResult, params stats.Params, topK int) Summary {
	top := sortByStat(res.Clusters)
	if topK > 0 && len(top) > topK {
		top = top[:topK]
	}

	return Summary{
		AnalysisID:       res.AnalysisID.String(),
		Grid:             res.Grid,
		Params:           params,
		ValidVoxels:      res.ValidVoxels,
		ObservedClusters: len(res.Clusters),
		SigClusters:      len(res.SigClusters),
		SigVoxels:        res.SigMask.Count(),
		Threshold:        res.Threshold,
		TopClusters:      top,
		Null:             res.NullSummary,
		Message:          res.Message,
		ElapsedSeconds:   res.ElapsedSeconds,
	}
}
