package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	// DefaultRuns is the number of fuzzing iterations executed per method when not configured otherwise.
	DefaultRuns = 50

	// DefaultForkURL is the node endpoint used when not configured otherwise.
	DefaultForkURL = "http://localhost:8545"

	// DefaultSenderRotationBias is the percent chance an iteration is sent from a non-deployer account.
	DefaultSenderRotationBias = 70
)

// GetDefaultProjectConfig obtains a default configuration for a fuzzing session. The FUZZ_RUNS and FORK_URL
// environment variables, when set, override the built-in defaults.
func GetDefaultProjectConfig() (*ProjectConfig, error) {
	projectConfig := &ProjectConfig{
		Fuzzing: FuzzingConfig{
			Runs:               DefaultRuns,
			ForkURL:            DefaultForkURL,
			SenderRotationBias: DefaultSenderRotationBias,
			ConstructorArgs:    map[string]map[string]any{},
		},
		Logging: LoggingConfig{
			Level: zerolog.InfoLevel,
		},
	}

	if runs, err := strconv.Atoi(os.Getenv("FUZZ_RUNS")); err == nil && runs > 0 {
		projectConfig.Fuzzing.Runs = runs
	}
	if forkURL := os.Getenv("FORK_URL"); forkURL != "" {
		projectConfig.Fuzzing.ForkURL = forkURL
	}

	return projectConfig, nil
}
