package analysis

import (
	"sort"

	mstats "github.com/montanaflynn/stats"

	clu "voxelperm/domain/cluster"
	"voxelperm/domain/stats"
	"voxelperm/domain/volume"
	"voxelperm/internal"
)

// Percentile computes the pth percentile (0-100) of data with linear
// interpolation between order statistics.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Threshold derives the FWER-controlling cluster statistic threshold from
// the null distribution of maximum cluster statistics.
func Threshold(null clu.NullDistribution, alpha float64) float64 {
	return Percentile(null, 100*(1-alpha))
}

// significantClusters flags observed clusters whose statistic strictly
// exceeds the threshold and builds the union mask of their voxels. The pass
// is capped at maxChecked clusters; truncation is logged, not fatal.
func significantClusters(observed []clu.Cluster, labels []int32, threshold float64, maxChecked int, g volume.Grid, logger *internal.Logger) ([]clu.Cluster, volume.Mask) {
	limit := len(observed)
	if limit > maxChecked {
		logger.Warn("observed cluster count %d exceeds significance cap %d; only the first %d are evaluated", len(observed), maxChecked, maxChecked)
		limit = maxChecked
	}

	sig := make([]clu.Cluster, 0)
	sigIDs := make(map[int32]bool)
	for _, c := range observed[:limit] {
		if c.StatValue > threshold {
			sig = append(sig, c)
			sigIDs[c.ID] = true
		}
	}

	mask := volume.NewMask(g)
	if len(sigIDs) > 0 {
		for i, lab := range labels {
			if lab != 0 && sigIDs[lab] {
				mask.Bits[i] = true
			}
		}
	}
	return sig, mask
}

// summarizeNull produces the descriptive digest of the null distribution
func summarizeNull(null clu.NullDistribution) clu.NullSummary {
	if len(null) == 0 {
		return clu.NullSummary{}
	}
	data := mstats.Float64Data(null)
	mean, _ := mstats.Mean(data)
	stdDev, _ := mstats.StandardDeviation(data)
	min, _ := mstats.Min(data)
	max, _ := mstats.Max(data)
	p95, _ := mstats.Percentile(data, 95)
	p99, _ := mstats.Percentile(data, 99)
	return clu.NullSummary{
		Mean:         mean,
		StdDev:       stdDev,
		Min:          min,
		Max:          max,
		Percentile95: p95,
		Percentile99: p99,
	}
}

// sortByStat orders clusters by descending statistic value, stable on ID
func sortByStat(clusters []clu.Cluster) []clu.Cluster {
	out := make([]clu.Cluster, len(clusters))
	copy(out, clusters)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StatValue != out[j].StatValue {
			return out[i].StatValue > out[j].StatValue
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// statName returns the human label for the active cluster statistic
func statName(s stats.ClusterStat) string {
	if s == stats.StatMass {
		return "cluster mass"
	}
	return "cluster size"
}
