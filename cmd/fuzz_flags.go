package cmd

import (
	"fmt"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/config"
	"github.com/spf13/cobra"
)

// addFuzzFlags adds the various flags for the fuzz command.
func addFuzzFlags() {
	// Config file
	fuzzCmd.Flags().String("config", "", "path to config file")

	// Fuzzing targets
	fuzzCmd.Flags().StringSlice("input", []string{},
		"path(s) to the Solidity contract file(s) or directory(ies) to fuzz")

	// Iterations per method
	fuzzCmd.Flags().Int("runs", 0,
		fmt.Sprintf("number of fuzzing iterations per method (unless a config file is provided, default is %d; FUZZ_RUNS overrides)", config.DefaultRuns))

	// Fork endpoint
	fuzzCmd.Flags().String("fork-url", "",
		fmt.Sprintf("JSON-RPC endpoint of the forked node (unless a config file is provided, default is %s; FORK_URL overrides)", config.DefaultForkURL))

	// Parameterless methods
	fuzzCmd.Flags().Bool("include-parameterless", false,
		"also fuzz methods without parameters instead of skipping them")

	// Exit code behavior
	fuzzCmd.Flags().Bool("fail-on-revert", false,
		"exit with a failure code when any fuzzed invocation reverted")

	// Literal seeding
	fuzzCmd.Flags().Bool("seed-from-source", false,
		"mix numeric literals harvested from the contract source into generated values")

	// Artifact cache
	fuzzCmd.Flags().String("artifact-cache-dir", "",
		"directory for the compiled artifact cache (empty disables caching)")
}

// updateProjectConfigWithFuzzFlags will update the given projectConfig with any CLI arguments that were provided.
func updateProjectConfigWithFuzzFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	if cmd.Flags().Changed("input") {
		projectConfig.Fuzzing.TargetPaths, err = cmd.Flags().GetStringSlice("input")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("runs") {
		projectConfig.Fuzzing.Runs, err = cmd.Flags().GetInt("runs")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("fork-url") {
		projectConfig.Fuzzing.ForkURL, err = cmd.Flags().GetString("fork-url")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("include-parameterless") {
		projectConfig.Fuzzing.IncludeParameterless, err = cmd.Flags().GetBool("include-parameterless")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("fail-on-revert") {
		projectConfig.Fuzzing.FailOnRevert, err = cmd.Flags().GetBool("fail-on-revert")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("seed-from-source") {
		projectConfig.Fuzzing.SeedFromSource, err = cmd.Flags().GetBool("seed-from-source")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("artifact-cache-dir") {
		projectConfig.Compilation.ArtifactCacheDirectory, err = cmd.Flags().GetString("artifact-cache-dir")
		if err != nil {
			return err
		}
	}

	return nil
}
