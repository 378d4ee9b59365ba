package platforms

import (
	"encoding/json"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ExtropyIO/Fuzzhead/compilation/types"
	"github.com/ExtropyIO/Fuzzhead/utils"
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// solcVersionPattern extracts the semantic version out of `solc --version` output.
var solcVersionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// SolcCompilationConfig compiles contracts through the standalone Solidity compiler using its combined JSON
// output.
type SolcCompilationConfig struct {
	// SolcPath is the resolved path of the solc executable.
	SolcPath string
}

// NewSolcCompilationConfig creates a solc platform configuration using the given solc executable.
func NewSolcCompilationConfig(solcPath string) *SolcCompilationConfig {
	return &SolcCompilationConfig{SolcPath: solcPath}
}

// Platform returns the platform name.
func (s *SolcCompilationConfig) Platform() string {
	return "solc"
}

// GetSystemSolcVersion runs `solc --version` and parses the compiler version out of its output.
func GetSystemSolcVersion(solcPath string) (*semver.Version, error) {
	out, err := exec.Command(solcPath, "--version").CombinedOutput()
	if err != nil {
		return nil, errors.Errorf("error while executing solc:\nOUTPUT:\n%s\nERROR: %s", string(out), err.Error())
	}

	versionStr := solcVersionPattern.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New("could not parse solc version using 'solc --version'")
	}
	return semver.NewVersion(versionStr)
}

// solcCombinedOutput mirrors the combined JSON document emitted by `solc --combined-json bin,abi`, keyed by
// "<filename>:<contract>".
type solcCombinedOutput struct {
	Contracts map[string]struct {
		Bin string          `json:"bin"`
		Abi json.RawMessage `json:"abi"`
	} `json:"contracts"`
}

// Compile builds the source with solc and extracts the named contract's bytecode and ABI from the combined JSON
// output.
func (s *SolcCompilationConfig) Compile(sourcePath string, contractName string) (*types.CompiledContract, string, error) {
	// Probe the compiler version first, so a broken install surfaces as a clear error rather than a JSON parse
	// failure.
	if _, err := GetSystemSolcVersion(s.SolcPath); err != nil {
		return nil, "", err
	}

	cmd := exec.Command(s.SolcPath, "--optimize", "--combined-json", "bin,abi", sourcePath)
	cmdStdout, cmdStderr, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, string(cmdCombined), errors.WithMessage(err, "solc compilation failed")
	}

	var results solcCombinedOutput
	if err = json.Unmarshal(cmdStdout, &results); err != nil {
		return nil, string(cmdCombined), errors.WithMessage(err, "could not parse solc JSON output")
	}

	contract, found := results.Contracts[sourcePath+":"+contractName]
	if !found {
		contract, found = results.Contracts[filepath.Base(sourcePath)+":"+contractName]
	}
	if !found {
		// Tolerate path normalization differences by matching on the contract name suffix.
		for key, candidate := range results.Contracts {
			if strings.HasSuffix(key, ":"+contractName) {
				contract, found = candidate, true
				break
			}
		}
	}
	if !found {
		return nil, string(cmdStderr), errors.Errorf("contract %s not found in solc compilation output", contractName)
	}

	initBytecode, err := types.ParseBytecodeFromHex(contract.Bin)
	if err != nil {
		return nil, string(cmdStderr), err
	}

	// Old solc releases emit the ABI as a JSON-encoded string rather than a structured array.
	abiDefinition := any(contract.Abi)
	var abiString string
	if json.Unmarshal(contract.Abi, &abiString) == nil {
		abiDefinition = abiString
	}
	parsedAbi, rawAbi, err := types.ParseABIFromInterface(abiDefinition)
	if err != nil {
		return nil, string(cmdStderr), err
	}

	return &types.CompiledContract{
		Name:          contractName,
		SourcePath:    sourcePath,
		InitBytecode:  initBytecode,
		Abi:           *parsedAbi,
		AbiDefinition: rawAbi,
	}, string(cmdStderr), nil
}
