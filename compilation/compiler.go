// Package compilation adapts external Solidity toolchains into a single compile entry point. Foundry's forge is
// preferred when installed, falling back to the standalone solc compiler.
package compilation

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/ExtropyIO/Fuzzhead/compilation/cache"
	"github.com/ExtropyIO/Fuzzhead/compilation/platforms"
	"github.com/ExtropyIO/Fuzzhead/compilation/types"
	"github.com/ExtropyIO/Fuzzhead/logging"
	"github.com/ExtropyIO/Fuzzhead/utils"
	"github.com/pkg/errors"
)

// compilerOutputLimit caps how much toolchain stderr is embedded into a compilation error message.
const compilerOutputLimit = 200

// ErrNoCompilerAvailable indicates that neither forge nor solc could be found on the system.
var ErrNoCompilerAvailable = errors.New("no Solidity compiler available: install Foundry (forge) or solc")

// CompilationError describes a failed toolchain invocation, carrying the platform name and captured output.
type CompilationError struct {
	// Platform is the name of the toolchain that failed.
	Platform string

	// Output is the toolchain's captured output.
	Output string

	// Err is the underlying invocation error.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation failed (%s): %s\nOutput: %s",
		e.Platform, e.Err.Error(), utils.TruncateString(e.Output, compilerOutputLimit))
}

// Unwrap returns the underlying invocation error.
func (e *CompilationError) Unwrap() error {
	return e.Err
}

// CompilerAdapter resolves the installed toolchain once and compiles contracts through it, consulting an optional
// artifact cache first.
type CompilerAdapter struct {
	// platform is the resolved toolchain, nil when none is installed.
	platform platforms.PlatformConfig

	// artifactCache optionally stores compiled artifacts keyed by source digest.
	artifactCache *cache.ArtifactCache

	// logger describes the adapter's sub-logger.
	logger *logging.Logger
}

// NewCompilerAdapter probes the system for a usable toolchain, preferring forge over solc, and returns an adapter
// bound to it. A missing toolchain is not an error until compilation is attempted.
func NewCompilerAdapter(logger *logging.Logger, artifactCache *cache.ArtifactCache) *CompilerAdapter {
	logger = logger.NewSubLogger("module", "compilation")

	var platform platforms.PlatformConfig
	if forgePath, err := exec.LookPath("forge"); err == nil {
		platform = platforms.NewFoundryCompilationConfig(forgePath)
	} else if solcPath, err := exec.LookPath("solc"); err == nil {
		platform = platforms.NewSolcCompilationConfig(solcPath)
	} else {
		logger.Warn("Neither 'forge' nor 'solc' found in PATH. Contract compilation will fail.")
		logger.Warn("Install Foundry: curl -L https://foundry.paradigm.xyz | bash && foundryup")
	}

	return &CompilerAdapter{
		platform:      platform,
		artifactCache: artifactCache,
		logger:        logger,
	}
}

// Platform returns the name of the resolved toolchain, or an empty string when none is available.
func (a *CompilerAdapter) Platform() string {
	if a.platform == nil {
		return ""
	}
	return a.platform.Platform()
}

// Compile compiles the named contract from the given source file, returning its deployment bytecode and ABI
// record. Results are served from and stored into the artifact cache when one is configured.
func (a *CompilerAdapter) Compile(sourcePath string, contractName string) (*types.CompiledContract, error) {
	if a.platform == nil {
		return nil, ErrNoCompilerAvailable
	}

	var digest []byte
	if a.artifactCache != nil {
		source, err := os.ReadFile(sourcePath)
		if err == nil {
			digest = cache.Digest(source, contractName)
			if cached, hit, err := a.artifactCache.Get(digest); err == nil && hit {
				a.logger.Debug("Artifact cache hit for contract: ", contractName)
				return cached, nil
			}
		}
	}

	a.logger.Debug("Compiling contract ", contractName, " with ", a.platform.Platform())
	contract, output, err := a.platform.Compile(sourcePath, contractName)
	if err != nil {
		return nil, &CompilationError{Platform: a.platform.Platform(), Output: output, Err: err}
	}

	if a.artifactCache != nil && digest != nil {
		if err := a.artifactCache.Put(digest, contract); err != nil {
			a.logger.Warn("Could not store artifact in cache: ", err.Error())
		}
	}
	return contract, nil
}
