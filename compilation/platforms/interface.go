package platforms

import (
	"github.com/ExtropyIO/Fuzzhead/compilation/types"
)

// PlatformConfig describes a compiler toolchain integration. Implementations compile a single named contract from
// a source file and return the artifact along with the toolchain's raw output for diagnostics.
type PlatformConfig interface {
	// Platform returns the name of the platform, e.g. "foundry" or "solc".
	Platform() string

	// Compile compiles the named contract from the given source file. It returns the compiled artifact and any
	// raw toolchain output captured during the build.
	Compile(sourcePath string, contractName string) (*types.CompiledContract, string, error)
}
