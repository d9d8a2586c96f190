package config

import (
	"os"
	"strconv"

	"voxelperm/domain/stats"
	"voxelperm/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis stats.Params
	Output   OutputConfig
}

// OutputConfig holds result emission settings
type OutputConfig struct {
	TopClusters int  // number of clusters in the textual summary
	PrettyJSON  bool // indent JSON output
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Analysis: loadAnalysisParams(),
		Output:   loadOutputConfig(),
	}

	if err := config.Analysis.Validate(); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}

	return config, nil
}

func loadAnalysisParams() stats.Params {
	p := stats.DefaultParams()
	p.ClusterThreshold = getEnvFloatOrDefault("CLUSTER_THRESHOLD", p.ClusterThreshold)
	p.NPermutations = getEnvIntOrDefault("N_PERMUTATIONS", p.NPermutations)
	p.Alpha = getEnvFloatOrDefault("ALPHA", p.Alpha)
	p.ClusterStat = stats.ClusterStat(getEnvOrDefault("CLUSTER_STAT", string(p.ClusterStat)))
	p.TestType = stats.TestType(getEnvOrDefault("TEST_TYPE", string(p.TestType)))
	p.Alternative = stats.Alternative(getEnvOrDefault("ALTERNATIVE", string(p.Alternative)))
	p.NJobs = getEnvIntOrDefault("N_JOBS", p.NJobs)
	p.MaxClustersChecked = getEnvIntOrDefault("MAX_CLUSTERS_CHECKED", p.MaxClustersChecked)
	p.SavePermutationLog = getEnvBoolOrDefault("SAVE_PERMUTATION_LOG", p.SavePermutationLog)
	p.Seed = getEnvInt64OrDefault("SEED", p.Seed)
	return p
}

func loadOutputConfig() OutputConfig {
	return OutputConfig{
		TopClusters: getEnvIntOrDefault("TOP_CLUSTERS", 5),
		PrettyJSON:  getEnvBoolOrDefault("PRETTY_JSON", true),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
