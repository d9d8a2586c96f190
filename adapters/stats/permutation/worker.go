package permutation

import (
	"math/rand"

	"voxelperm/adapters/stats/labeler"
	"voxelperm/adapters/stats/ttest"
	"voxelperm/domain/stats"
)

// Config carries the statistical settings one permutation needs. It is
// immutable during a run and shared across all workers.
type Config struct {
	TestType         stats.TestType
	ClusterThreshold float64
	Alternative      stats.Alternative
	ClusterStat      stats.ClusterStat
}

// Outcome is one permutation's maximum cluster statistics. Size and mass are
// both computed regardless of the active statistic so the scheduler can feed
// the size-mass correlation diagnostics. All fields are zero when the
// permutation forms no multi-voxel cluster.
type Outcome struct {
	Stat float64
	Size float64
	Mass float64
}

// Assignment records the group relabeling one permutation used, for audit.
// Order is the subject index permutation (unpaired); Signs the per-pair sign
// flips (paired).
type Assignment struct {
	Permutation int    `json:"permutation"`
	Seed        int64  `json:"seed"`
	Order       []int  `json:"order,omitempty"`
	Signs       []int8 `json:"signs,omitempty"`
}

// RunOne executes a single permutation: relabel (or sign-flip), t-test,
// cluster, extract maxima. The result is a pure function of the matrix,
// config and seed; execution order and worker count never influence it.
func RunOne(m *ttest.Matrix, cfg Config, seed int64) Outcome {
	out, _, _ := runOne(m, cfg, seed, false)
	return out
}

// RunOneLogged is RunOne plus capture of the relabeling used
func RunOneLogged(m *ttest.Matrix, cfg Config, seed int64) (Outcome, []int, []int8) {
	return runOne(m, cfg, seed, true)
}

func runOne(m *ttest.Matrix, cfg Config, seed int64, capture bool) (Outcome, []int, []int8) {
	rng := rand.New(rand.NewSource(seed))

	var tv, pv []float64
	var order []int
	var signs []int8

	if cfg.TestType == stats.TestPaired {
		// Within-pair sign flips are the exchangeability unit: flipping the
		// difference preserves the pairing while destroying the true
		// label-to-measurement association.
		signs = make([]int8, m.N1)
		for i := range signs {
			if rng.Intn(2) == 0 {
				signs[i] = 1
			} else {
				signs[i] = -1
			}
		}
		tv, pv = ttest.Paired(m, signs, cfg.Alternative)
	} else {
		// Whole-subject relabeling: first N1 permuted positions become group 1
		order = rng.Perm(m.Subjects())
		tv, pv = ttest.Pooled(m, order, cfg.Alternative)
	}

	out := tallyMax(m, cfg, tv, pv)
	if !capture {
		return out, nil, nil
	}
	return out, order, signs
}

// tallyMax scatters the extracted results onto the full grid, labels the
// suprathreshold mask and pulls out the maximum multi-voxel cluster stats.
func tallyMax(m *ttest.Matrix, cfg Config, tv, pv []float64) Outcome {
	g := m.Grid
	supra := make([]bool, g.Len())
	tvol := make([]float64, g.Len())
	for v, idx := range m.Lin {
		if pv[v] < cfg.ClusterThreshold {
			supra[idx] = true
		}
		tvol[idx] = tv[v]
	}

	lab, n := labeler.Label(supra, g)
	sizes, masses := labeler.Tally(lab, n, tvol)
	maxSize, maxMass := labeler.MaxStats(sizes, masses)

	stat := maxSize
	if cfg.ClusterStat == stats.StatMass {
		stat = maxMass
	}
	return Outcome{Stat: stat, Size: maxSize, Mass: maxMass}
}
