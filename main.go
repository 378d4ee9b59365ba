package main

import (
	"os"

	"github.com/ExtropyIO/Fuzzhead/cmd"
	"github.com/ExtropyIO/Fuzzhead/cmd/exitcodes"
)

func main() {
	// Run our root CLI command, which contains all underlying command logic and will handle parsing/invocation.
	err := cmd.Execute()

	// Determine the exit code to quit with, based on the error we may have received.
	_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
	os.Exit(exitCode)
}
