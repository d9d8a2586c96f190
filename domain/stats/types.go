package stats

// TestType selects the hypothesis test applied per voxel
type TestType string

const (
	TestUnpaired TestType = "unpaired" // independent two-sample pooled-variance t-test
	TestPaired   TestType = "paired"   // subject-matched paired t-test
)

// Alternative selects the tail(s) of the per-voxel test
type Alternative string

const (
	AltTwoSided Alternative = "two-sided"
	AltGreater  Alternative = "greater"
	AltLess     Alternative = "less"
)

// ClusterStat selects the cluster-level test statistic
type ClusterStat string

const (
	StatSize ClusterStat = "size" // voxel count
	StatMass ClusterStat = "mass" // sum of t-statistics over the cluster
)

// Valid reports whether the test type is one of the supported values
func (t TestType) Valid() bool {
	return t == TestUnpaired || t == TestPaired
}

// Valid reports whether the alternative is one of the supported values
func (a Alternative) Valid() bool {
	return a == AltTwoSided || a == AltGreater || a == AltLess
}

// Valid reports whether the cluster statistic is one of the supported values
func (c ClusterStat) Valid() bool {
	return c == StatSize || c == StatMass
}
