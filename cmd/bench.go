package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/ExtropyIO/Fuzzhead/cmd/exitcodes"
	"github.com/ExtropyIO/Fuzzhead/fuzzing"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/config"
	"github.com/spf13/cobra"
)

// benchCmd represents the command provider for benchmark sweeps
var benchCmd = &cobra.Command{
	Use:           "bench",
	Short:         "Runs a regression benchmark sweep",
	Long:          `Runs the fuzzer over a directory of benchmark contracts and reports which expected vulnerabilities were detected`,
	Args:          cobra.NoArgs,
	RunE:          cmdRunBench,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addBenchFlags()
	rootCmd.AddCommand(benchCmd)
}

// cmdRunBench executes the CLI bench command: it sweeps every benchmark contract under the given directory and
// prints a detection report. The TEST_CASES and MAX_CONTRACTS environment variables provide defaults for the
// corresponding flags.
func cmdRunBench(cmd *cobra.Command, args []string) error {
	projectConfig, err := config.GetDefaultProjectConfig()
	if err != nil {
		cmdLogger.Error("Failed to run the bench command", err)
		return err
	}

	benchmarkDir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}

	if testCases, err := strconv.Atoi(os.Getenv("TEST_CASES")); err == nil && testCases > 0 {
		projectConfig.Fuzzing.Runs = testCases
	}
	if cmd.Flags().Changed("test-cases") {
		if projectConfig.Fuzzing.Runs, err = cmd.Flags().GetInt("test-cases"); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("fork-url") {
		if projectConfig.Fuzzing.ForkURL, err = cmd.Flags().GetString("fork-url"); err != nil {
			return err
		}
	}

	maxContracts, _ := strconv.Atoi(os.Getenv("MAX_CONTRACTS"))
	if cmd.Flags().Changed("max-contracts") {
		if maxContracts, err = cmd.Flags().GetInt("max-contracts"); err != nil {
			return err
		}
	}

	fuzzer, err := fuzzing.NewFuzzer(*projectConfig)
	if err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fuzzer.Stop()
	}()

	summary, err := fuzzer.RunBenchmark(benchmarkDir, maxContracts)
	if err != nil {
		cmdLogger.Error("Benchmark sweep failed", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeFuzzerError)
	}
	fuzzer.ReportBenchmark(summary)
	return nil
}

// addBenchFlags adds the various flags for the bench command.
func addBenchFlags() {
	benchCmd.Flags().String("dir", "benchmarks", "directory containing benchmark contracts")
	benchCmd.Flags().Int("test-cases", 0,
		fmt.Sprintf("number of fuzzing iterations per method (default %d; TEST_CASES overrides)", config.DefaultRuns))
	benchCmd.Flags().String("fork-url", "",
		fmt.Sprintf("JSON-RPC endpoint of the forked node (default %s; FORK_URL overrides)", config.DefaultForkURL))
	benchCmd.Flags().Int("max-contracts", 0, "maximum number of contracts to sweep (0 sweeps all; MAX_CONTRACTS overrides)")
}
