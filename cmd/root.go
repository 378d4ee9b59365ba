package cmd

import (
	"github.com/ExtropyIO/Fuzzhead/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.2.0"

// rootCmd represents the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:     "fuzzhead",
	Version: version,
	Short:   "A black-box fuzzing harness for Solidity smart contracts",
	Long:    "fuzzhead deploys Solidity contracts to a locally forked node and fuzzes their externally callable methods with boundary-biased random inputs",
}

// cmdLogger is the logger that will be used for the cmd package
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

// Execute provides an exportable function to invoke the CLI.
// Returns an error if one was encountered.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}
