package stats

import "fmt"

// Default parameter values, applied by DefaultParams
const (
	DefaultClusterThreshold   = 0.01
	DefaultNPermutations      = 1000
	DefaultAlpha              = 0.05
	DefaultNJobs              = -1 // all cores
	DefaultMaxClustersChecked = 10000
	DefaultSeed               = 42
)

// Params is the validated parameter bundle for one correction run.
// INVARIANTS:
// - ClusterThreshold and Alpha are probabilities in (0, 1)
// - NPermutations > 0
// - MaxClustersChecked > 0 (significance pass cap, warning on truncation)
type Params struct {
	ClusterThreshold   float64     `json:"cluster_threshold"`
	NPermutations      int         `json:"n_permutations"`
	Alpha              float64     `json:"alpha"`
	ClusterStat        ClusterStat `json:"cluster_stat"`
	TestType           TestType    `json:"test_type"`
	Alternative        Alternative `json:"alternative"`
	NJobs              int         `json:"n_jobs"`
	MaxClustersChecked int         `json:"max_clusters_checked"`
	SavePermutationLog bool        `json:"save_permutation_log"`
	Seed               int64       `json:"seed"`
}

// DefaultParams returns the parameter bundle with all defaults applied
func DefaultParams() Params {
	return Params{
		ClusterThreshold:   DefaultClusterThreshold,
		NPermutations:      DefaultNPermutations,
		Alpha:              DefaultAlpha,
		ClusterStat:        StatSize,
		TestType:           TestUnpaired,
		Alternative:        AltTwoSided,
		NJobs:              DefaultNJobs,
		MaxClustersChecked: DefaultMaxClustersChecked,
		Seed:               DefaultSeed,
	}
}

// Validate fails fast on configuration errors, before any computation starts
func (p Params) Validate() error {
	if p.ClusterThreshold <= 0 || p.ClusterThreshold >= 1 {
		return fmt.Errorf("cluster_threshold must be in (0, 1), got %g", p.ClusterThreshold)
	}
	if p.NPermutations <= 0 {
		return fmt.Errorf("n_permutations must be positive, got %d", p.NPermutations)
	}
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %g", p.Alpha)
	}
	if !p.ClusterStat.Valid() {
		return fmt.Errorf("cluster_stat must be %q or %q, got %q", StatSize, StatMass, p.ClusterStat)
	}
	if !p.TestType.Valid() {
		return fmt.Errorf("test_type must be %q or %q, got %q", TestPaired, TestUnpaired, p.TestType)
	}
	if !p.Alternative.Valid() {
		return fmt.Errorf("alternative must be %q, %q or %q, got %q", AltTwoSided, AltGreater, AltLess, p.Alternative)
	}
	if p.MaxClustersChecked <= 0 {
		return fmt.Errorf("max_clusters_checked must be positive, got %d", p.MaxClustersChecked)
	}
	return nil
}
