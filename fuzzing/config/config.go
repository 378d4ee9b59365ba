package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the complete configuration of a fuzzing session.
type ProjectConfig struct {
	// Fuzzing describes the configuration used in fuzzing campaigns.
	Fuzzing FuzzingConfig `json:"fuzzing"`

	// Compilation describes the configuration used to compile target contracts.
	Compilation CompilationConfig `json:"compilation"`

	// Logging describes the configuration used for logging to file and console.
	Logging LoggingConfig `json:"logging"`
}

// FuzzingConfig describes the configuration options used by the fuzzing.Fuzzer.
type FuzzingConfig struct {
	// TargetPaths are the contract source files or directories to fuzz.
	TargetPaths []string `json:"targetPaths"`

	// Runs is the number of fuzzing iterations executed per eligible method.
	Runs int `json:"runs"`

	// ForkURL is the JSON-RPC endpoint of the forked node transactions are executed against.
	ForkURL string `json:"forkUrl"`

	// IncludeParameterless indicates whether methods without parameters should also be fuzzed (with empty
	// calldata) rather than skipped.
	IncludeParameterless bool `json:"includeParameterless"`

	// FailOnRevert indicates whether the process should exit with a failure code when any fuzzed invocation
	// reverted.
	FailOnRevert bool `json:"failOnRevert"`

	// SeedFromSource indicates whether numeric literals harvested from the contract source should be mixed into
	// generated 256-bit values.
	SeedFromSource bool `json:"seedFromSource"`

	// SenderRotationBias is the percent chance [0,100] that an iteration is sent from a non-deployer account,
	// when more than one account is available. Biasing towards non-deployer senders surfaces access control
	// defects.
	SenderRotationBias int `json:"senderRotationBias"`

	// ConstructorArgs holds the constructor arguments for target contract deployments, keyed by contract name
	// and then parameter name.
	ConstructorArgs map[string]map[string]any `json:"constructorArgs"`
}

// CompilationConfig describes the configuration used for the compiler adapter.
type CompilationConfig struct {
	// ArtifactCacheDirectory is the directory holding the compiled artifact cache database. An empty value
	// disables artifact caching.
	ArtifactCacheDirectory string `json:"artifactCacheDirectory"`
}

// LoggingConfig describes the configuration used for logging to file and console.
type LoggingConfig struct {
	// Level describes the lowest log level that will be emitted.
	Level zerolog.Level `json:"level"`

	// LogDirectory describes a directory where a log file will be written in addition to console output. An
	// empty value disables file logging.
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from the provided file path.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig, err := GetDefaultProjectConfig()
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, projectConfig); err != nil {
		return nil, errors.WithMessagef(err, "could not parse config file at %s", path)
	}

	if err = projectConfig.Validate(); err != nil {
		return nil, err
	}
	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to the provided file path in a JSON-serialized format.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0644))
}

// Validate ensures the configuration is sound before a fuzzing session starts.
func (p *ProjectConfig) Validate() error {
	if p.Fuzzing.Runs <= 0 {
		return errors.New("invalid configuration: runs must be a positive number")
	}
	if p.Fuzzing.ForkURL == "" {
		return errors.New("invalid configuration: forkUrl must not be empty")
	}
	if p.Fuzzing.SenderRotationBias < 0 || p.Fuzzing.SenderRotationBias > 100 {
		return errors.New("invalid configuration: senderRotationBias must be within [0, 100]")
	}
	return nil
}
