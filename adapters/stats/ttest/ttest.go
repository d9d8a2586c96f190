package ttest

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"voxelperm/domain/stats"
)

// Pooled computes the equal-variance pooled two-sample t-test for every voxel
// row of the matrix. perm optionally reorders subject columns (a permutation
// of 0..N1+N2-1; the first N1 permuted positions form group 1); nil means the
// observed grouping.
//
// Voxels with zero pooled standard error get t=0, p=1. Degenerate voxels are
// handled numerically, never raised as errors.
func Pooled(m *Matrix, perm []int, alt stats.Alternative) (tvals, pvals []float64) {
	n1, n2 := m.N1, m.N2
	df := float64(n1 + n2 - 2)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	inv1, inv2 := 1.0/float64(n1), 1.0/float64(n2)
	seScale := inv1 + inv2

	tvals = make([]float64, m.Voxels())
	pvals = make([]float64, m.Voxels())

	for v := 0; v < m.Voxels(); v++ {
		row := m.Row(v)

		var sum1, sum2 float64
		for i := 0; i < n1; i++ {
			sum1 += value(row, perm, i)
		}
		for i := n1; i < n1+n2; i++ {
			sum2 += value(row, perm, i)
		}
		m1, m2 := sum1*inv1, sum2*inv2

		// Unbiased variances (ddof=1), two-pass for numerical stability
		var ss1, ss2 float64
		for i := 0; i < n1; i++ {
			d := value(row, perm, i) - m1
			ss1 += d * d
		}
		for i := n1; i < n1+n2; i++ {
			d := value(row, perm, i) - m2
			ss2 += d * d
		}

		pooled := (ss1 + ss2) / df
		se := math.Sqrt(pooled * seScale)
		if se == 0 {
			tvals[v] = 0
			pvals[v] = 1
			continue
		}

		t := (m1 - m2) / se
		tvals[v] = t
		pvals[v] = pValue(dist, t, alt)
	}

	return tvals, pvals
}

// Paired computes the paired t-test per voxel row over within-pair
// differences. signs optionally flips each pair's difference (the paired
// permutation's exchangeability unit); nil means all +1. Requires N1 == N2.
func Paired(m *Matrix, signs []int8, alt stats.Alternative) (tvals, pvals []float64) {
	n := m.N1
	df := float64(n - 1)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	sqrtN := math.Sqrt(float64(n))

	tvals = make([]float64, m.Voxels())
	pvals = make([]float64, m.Voxels())
	diffs := make([]float64, n)

	for v := 0; v < m.Voxels(); v++ {
		row := m.Row(v)

		var sum float64
		for i := 0; i < n; i++ {
			d := float64(row[i]) - float64(row[n+i])
			if signs != nil && signs[i] < 0 {
				d = -d
			}
			diffs[i] = d
			sum += d
		}
		mean := sum / float64(n)

		var ss float64
		for i := 0; i < n; i++ {
			d := diffs[i] - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / df)
		if sd == 0 {
			tvals[v] = 0
			pvals[v] = 1
			continue
		}

		t := mean / (sd / sqrtN)
		tvals[v] = t
		pvals[v] = pValue(dist, t, alt)
	}

	return tvals, pvals
}

func value(row []float32, perm []int, i int) float64 {
	if perm == nil {
		return float64(row[i])
	}
	return float64(row[perm[i]])
}

func pValue(dist distuv.StudentsT, t float64, alt stats.Alternative) float64 {
	var p float64
	switch alt {
	case stats.AltGreater:
		p = dist.Survival(t)
	case stats.AltLess:
		p = dist.CDF(t)
	default: // two-sided
		p = 2 * dist.Survival(math.Abs(t))
	}
	if p > 1 {
		p = 1
	}
	return p
}
