package ports

import (
	"context"

	"voxelperm/domain/cluster"
	"voxelperm/domain/stats"
	"voxelperm/domain/volume"
)

// ClusterCorrector runs the cluster-based permutation correction over two
// subject groups and returns the family-wise-error-corrected result.
//
// Configuration errors surface immediately; degenerate data (zero-variance
// voxels, zero observed clusters, empty valid mask) never fails and instead
// produces a well-formed, possibly empty, CorrectionResult.
type ClusterCorrector interface {
	Correct(ctx context.Context, groupA, groupB volume.Group, params stats.Params) (*cluster.CorrectionResult, error)
}
