package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ExtropyIO/Fuzzhead/cmd/exitcodes"
	"github.com/ExtropyIO/Fuzzhead/fuzzing"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/config"
	"github.com/ExtropyIO/Fuzzhead/logging/colors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fuzzCmd represents the command provider for fuzzing
var fuzzCmd = &cobra.Command{
	Use:           "fuzz",
	Short:         "Starts a fuzzing campaign",
	Long:          `Starts a fuzzing campaign against the target contract(s)`,
	Args:          cmdValidateFuzzArgs,
	RunE:          cmdRunFuzz,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add all the flags allowed for the fuzz command
	addFuzzFlags()

	// Add the fuzz command and its associated flags to the root command
	rootCmd.AddCommand(fuzzCmd)
}

// cmdValidateFuzzArgs makes sure that there are no positional arguments provided to the fuzz command
func cmdValidateFuzzArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("fuzz does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the fuzz command", err)
		return err
	}
	return nil
}

// cmdRunFuzz executes the CLI fuzz command. The project configuration is resolved from a custom config file
// (via --config), the default fuzzhead.json in the working directory, or built-in defaults, then updated with
// whatever flags were set.
func cmdRunFuzz(cmd *cobra.Command, args []string) error {
	projectConfig, err := resolveProjectConfig(cmd.Flags())
	if err != nil {
		cmdLogger.Error("Failed to run the fuzz command", err)
		return err
	}

	if err = updateProjectConfigWithFuzzFlags(cmd, projectConfig); err != nil {
		cmdLogger.Error("Failed to run the fuzz command", err)
		return err
	}

	if len(projectConfig.Fuzzing.TargetPaths) == 0 {
		err = fmt.Errorf("no fuzzing targets provided: use --input or set targetPaths in the project config")
		cmdLogger.Error("Failed to run the fuzz command", err)
		return err
	}

	// Create our fuzzing session
	fuzzer, err := fuzzing.NewFuzzer(*projectConfig)
	if err != nil {
		return err
	}

	// Stop our fuzzing session on keyboard interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fuzzer.Stop()
	}()

	// Start the fuzzing session.
	if err = fuzzer.Start(); err != nil {
		cmdLogger.Error("Fuzzing session failed", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeFuzzerError)
	}

	// When configured to treat reverts as failures, surface them through a dedicated exit code.
	if projectConfig.Fuzzing.FailOnRevert && fuzzer.Summary().Failed > 0 {
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeRevertsFound)
	}
	return nil
}

// resolveProjectConfig loads the project configuration: a custom file when --config was used, the default
// fuzzhead.json when present in the working directory, or the built-in defaults otherwise.
func resolveProjectConfig(flags *pflag.FlagSet) (*config.ProjectConfig, error) {
	configFlagUsed := flags.Changed("config")
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	_, existenceError := os.Stat(configPath)
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		return config.ReadProjectConfigFromFile(configPath)
	}
	if configFlagUsed {
		// A custom config file was requested but could not be found.
		return nil, existenceError
	}
	return config.GetDefaultProjectConfig()
}
