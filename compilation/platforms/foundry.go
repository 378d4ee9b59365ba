package platforms

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ExtropyIO/Fuzzhead/compilation/types"
	"github.com/ExtropyIO/Fuzzhead/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FoundryCompilationConfig compiles contracts through `forge build`. When the source file belongs to a Foundry
// project (detected by walking upward for foundry.toml or remappings.txt), the build runs in that project root so
// remappings and library paths resolve. Otherwise the source is copied into an ephemeral project and built there.
type FoundryCompilationConfig struct {
	// ForgePath is the resolved path of the forge executable.
	ForgePath string
}

// NewFoundryCompilationConfig creates a foundry platform configuration using the given forge executable.
func NewFoundryCompilationConfig(forgePath string) *FoundryCompilationConfig {
	return &FoundryCompilationConfig{ForgePath: forgePath}
}

// Platform returns the platform name.
func (f *FoundryCompilationConfig) Platform() string {
	return "foundry"
}

// Compile builds the named contract with forge and parses the resulting artifact.
func (f *FoundryCompilationConfig) Compile(sourcePath string, contractName string) (*types.CompiledContract, string, error) {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}

	if projectRoot := findFoundryProjectRoot(absSource); projectRoot != "" {
		return f.compileInProject(absSource, contractName, projectRoot)
	}
	return f.compileEphemeral(absSource, contractName)
}

// compileInProject builds the source inside its own Foundry project root, preserving remappings, libs, and
// foundry.toml configuration.
func (f *FoundryCompilationConfig) compileInProject(absSource string, contractName string, projectRoot string) (*types.CompiledContract, string, error) {
	relSource, err := filepath.Rel(projectRoot, absSource)
	if err != nil {
		relSource = absSource
	}

	cmd := exec.Command(f.ForgePath, "build", "--force", relSource)
	cmd.Dir = projectRoot
	_, _, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, string(cmdCombined), errors.WithMessagef(err, "forge build failed in project root %s", projectRoot)
	}

	// Forge writes artifacts under out/<path-after-src>/<stem>.sol/<Contract>.json.
	pathAfterSrc := strings.TrimPrefix(relSource, "src"+string(filepath.Separator))
	fileStem := utils.GetFileNameWithoutExtension(absSource)
	artifactPath := filepath.Join(projectRoot, "out", filepath.Dir(pathAfterSrc), fileStem+".sol", contractName+".json")

	if !utils.FileExists(artifactPath) {
		artifactPath, err = findArtifact(filepath.Join(projectRoot, "out"), fileStem, contractName)
		if err != nil {
			return nil, string(cmdCombined), err
		}
	}

	contract, err := parseFoundryArtifact(artifactPath, absSource, contractName)
	return contract, string(cmdCombined), err
}

// compileEphemeral copies a standalone source file into a temporary Foundry project, builds it there, and reads
// the compiled artifact. The temporary project is removed afterward.
func (f *FoundryCompilationConfig) compileEphemeral(absSource string, contractName string) (*types.CompiledContract, string, error) {
	tempDir := filepath.Join(os.TempDir(), "fuzzhead-compile-"+uuid.New().String())
	if err := os.MkdirAll(filepath.Join(tempDir, "src"), 0755); err != nil {
		return nil, "", errors.WithStack(err)
	}
	defer os.RemoveAll(tempDir)

	if err := utils.CopyFile(absSource, filepath.Join(tempDir, "src", filepath.Base(absSource))); err != nil {
		return nil, "", err
	}

	// Initialize a bare project skeleton; failures here are tolerable since build will surface real problems.
	initCmd := exec.Command(f.ForgePath, "init", "--force", "--no-git")
	initCmd.Dir = tempDir
	_, _, _, _ = utils.RunCommandWithOutputAndError(initCmd)

	// Drop the template's sample contract so it cannot shadow or break the build.
	_ = os.Remove(filepath.Join(tempDir, "src", "Counter.sol"))

	buildCmd := exec.Command(f.ForgePath, "build", "--force")
	buildCmd.Dir = tempDir
	_, _, cmdCombined, err := utils.RunCommandWithOutputAndError(buildCmd)
	if err != nil {
		return nil, string(cmdCombined), errors.WithMessage(err, "forge build failed")
	}

	fileStem := utils.GetFileNameWithoutExtension(absSource)
	artifactPath := filepath.Join(tempDir, "out", fileStem+".sol", contractName+".json")
	if !utils.FileExists(artifactPath) {
		artifactPath, err = findArtifact(filepath.Join(tempDir, "out"), fileStem, contractName)
		if err != nil {
			return nil, string(cmdCombined), err
		}
	}

	contract, err := parseFoundryArtifact(artifactPath, absSource, contractName)
	return contract, string(cmdCombined), err
}

// findFoundryProjectRoot walks upward from the source file looking for a project config file (foundry.toml or
// remappings.txt). It returns the containing directory, or an empty string if none is found.
func findFoundryProjectRoot(absSource string) string {
	current := filepath.Dir(absSource)
	for {
		if utils.FileExists(filepath.Join(current, "foundry.toml")) ||
			utils.FileExists(filepath.Join(current, "remappings.txt")) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// findArtifact searches the forge output tree for <stem>.sol/<contractName>.json, used when the expected artifact
// path does not resolve directly.
func findArtifact(outDir string, fileStem string, contractName string) (string, error) {
	if !utils.DirectoryExists(outDir) {
		return "", errors.Errorf("compiled artifact not found: out directory %s does not exist", outDir)
	}

	wantedDir := fileStem + ".sol"
	wantedFile := contractName + ".json"
	var found string
	err := filepath.WalkDir(outDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && entry.Name() == wantedFile && filepath.Base(filepath.Dir(path)) == wantedDir {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	if found == "" {
		return "", errors.Errorf("compiled artifact not found: %s/%s under %s", wantedDir, wantedFile, outDir)
	}
	return found, nil
}

// foundryArtifact mirrors the artifact JSON fields consumed from forge output.
type foundryArtifact struct {
	Bytecode json.RawMessage `json:"bytecode"`
	Abi      json.RawMessage `json:"abi"`
}

// parseFoundryArtifact reads a forge artifact JSON document and extracts the deployment bytecode and ABI.
func parseFoundryArtifact(artifactPath string, sourcePath string, contractName string) (*types.CompiledContract, error) {
	content, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var artifact foundryArtifact
	if err = json.Unmarshal(content, &artifact); err != nil {
		return nil, errors.WithMessage(err, "could not parse forge artifact JSON")
	}
	if artifact.Bytecode == nil {
		return nil, errors.New("bytecode not found in artifact")
	}
	if artifact.Abi == nil {
		return nil, errors.New("ABI not found in artifact")
	}

	// The bytecode field is usually an object with a hex "object" member, but older artifact formats emit the hex
	// string directly.
	var bytecodeHex string
	var bytecodeObject struct {
		Object string `json:"object"`
	}
	if err = json.Unmarshal(artifact.Bytecode, &bytecodeObject); err == nil && bytecodeObject.Object != "" {
		bytecodeHex = bytecodeObject.Object
	} else if err = json.Unmarshal(artifact.Bytecode, &bytecodeHex); err != nil {
		return nil, errors.New("bytecode not found in artifact")
	}

	initBytecode, err := types.ParseBytecodeFromHex(bytecodeHex)
	if err != nil {
		return nil, err
	}

	parsedAbi, rawAbi, err := types.ParseABIFromInterface(artifact.Abi)
	if err != nil {
		return nil, err
	}

	return &types.CompiledContract{
		Name:          contractName,
		SourcePath:    sourcePath,
		InitBytecode:  initBytecode,
		Abi:           *parsedAbi,
		AbiDefinition: rawAbi,
	}, nil
}
