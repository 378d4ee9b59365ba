// Package fuzzing orchestrates fuzzing campaigns: it parses each target contract's surface, compiles and deploys
// it to a forked node, and hammers every eligible method with boundary-biased random arguments, tallying
// passed/failed/skipped invocations.
package fuzzing

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/ExtropyIO/Fuzzhead/chain"
	"github.com/ExtropyIO/Fuzzhead/compilation"
	"github.com/ExtropyIO/Fuzzhead/compilation/cache"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/abiutils"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/config"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/contracts"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/valuegeneration"
	"github.com/ExtropyIO/Fuzzhead/logging"
	"github.com/ExtropyIO/Fuzzhead/logging/colors"
	"github.com/ExtropyIO/Fuzzhead/utils"
	"github.com/pkg/errors"
)

// valueSetProbability is the percent chance a 256-bit draw is taken from source literals when seeding is enabled.
const valueSetProbability = 10

// FuzzSummary aggregates invocation outcomes across methods and contracts.
type FuzzSummary struct {
	// Passed counts invocations mined with a success status.
	Passed int

	// Failed counts invocations that reverted or failed at the transport/encoding layer.
	Failed int

	// Skipped counts invocations abandoned because an argument could not be generated.
	Skipped int
}

// Add accumulates another summary into this one.
func (s *FuzzSummary) Add(other FuzzSummary) {
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// Fuzzer represents an execution-based black-box fuzzing session over one or more target contracts.
type Fuzzer struct {
	// config describes the project configuration the session was created with.
	config config.ProjectConfig

	// logger describes the fuzzer's sub-logger.
	logger *logging.Logger

	// compiler adapts the installed Solidity toolchain.
	compiler *compilation.CompilerAdapter

	// artifactCache optionally persists compilation artifacts between runs.
	artifactCache *cache.ArtifactCache

	// executor owns the session's chain state once connected.
	executor *chain.ForkExecutor

	// generator produces randomized argument values.
	generator *valuegeneration.RandomValueGenerator

	// randomProvider drives sender rotation decisions.
	randomProvider *rand.Rand

	// constructorArgs resolves constructor argument values for deployments.
	constructorArgs ConstructorArgProvider

	// summary accumulates invocation outcomes across the whole session.
	summary FuzzSummary

	// ctx describes the session context, cancelled by Stop.
	ctx context.Context

	// cancel describes the cancellation function of ctx.
	cancel context.CancelFunc
}

// NewFuzzer returns an instance of a new fuzzing session for the provided project configuration.
func NewFuzzer(projectConfig config.ProjectConfig) (*Fuzzer, error) {
	if err := projectConfig.Validate(); err != nil {
		return nil, err
	}

	// Update the global logger to the configured level so every package sub-logger inherits it.
	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level, true)
	logger := logging.GlobalLogger.NewSubLogger("module", "fuzzing")

	if projectConfig.Logging.LogDirectory != "" {
		if err := os.MkdirAll(projectConfig.Logging.LogDirectory, 0755); err != nil {
			return nil, errors.WithMessage(err, "could not create log directory")
		}
		logFile, err := os.Create(filepath.Join(projectConfig.Logging.LogDirectory, "fuzzhead.log"))
		if err != nil {
			return nil, errors.WithMessage(err, "could not create log file")
		}
		logging.GlobalLogger.AddWriter(logFile)
	}

	var artifactCache *cache.ArtifactCache
	if dir := projectConfig.Compilation.ArtifactCacheDirectory; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WithMessage(err, "could not create artifact cache directory")
		}
		var err error
		artifactCache, err = cache.Open(filepath.Join(dir, "artifacts.db"))
		if err != nil {
			return nil, err
		}
	}

	randomProvider := rand.New(rand.NewSource(time.Now().UnixNano()))
	generatorConfig := valuegeneration.DefaultRandomValueGeneratorConfig()
	if projectConfig.Fuzzing.SeedFromSource {
		generatorConfig.ValueSetProbability = valueSetProbability
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Fuzzer{
		config:          projectConfig,
		logger:          logger,
		compiler:        compilation.NewCompilerAdapter(logging.GlobalLogger, artifactCache),
		artifactCache:   artifactCache,
		generator:       valuegeneration.NewRandomValueGenerator(generatorConfig, randomProvider),
		randomProvider:  randomProvider,
		constructorArgs: &ConfigConstructorArgProvider{Args: projectConfig.Fuzzing.ConstructorArgs},
		ctx:             ctx,
		cancel:          cancel,
	}, nil
}

// Summary returns the accumulated invocation outcomes of the session.
func (f *Fuzzer) Summary() FuzzSummary {
	return f.summary
}

// Stop cancels the session. In-flight receipt polling unwinds at its next suspension point.
func (f *Fuzzer) Stop() {
	f.cancel()
}

// Start runs the fuzzing session over every configured target path and reports the aggregate results. Setup,
// compilation, and deployment errors terminate the session; per-iteration failures are tallied and reported at
// the end.
func (f *Fuzzer) Start() error {
	if err := f.connect(); err != nil {
		return err
	}
	defer f.disconnect()

	targetFiles, err := f.resolveTargetFiles()
	if err != nil {
		return err
	}
	if len(targetFiles) == 0 {
		return errors.New("no target contract files found to fuzz")
	}

	for _, targetFile := range targetFiles {
		source, err := os.ReadFile(targetFile)
		if err != nil {
			return errors.WithStack(err)
		}
		summary, err := f.FuzzContractSource(string(source), targetFile)
		if err != nil {
			return err
		}
		f.summary.Add(*summary)
	}

	f.logger.Info("Fuzzing complete")
	f.logger.Info(colors.GreenBold, fmt.Sprintf("%d runs passed", f.summary.Passed), colors.Reset)
	f.logger.Info(colors.RedBold, fmt.Sprintf("%d runs failed", f.summary.Failed), colors.Reset)
	if f.summary.Skipped > 0 {
		f.logger.Info(colors.YellowBold, fmt.Sprintf("%d runs skipped (unsupported parameter types)", f.summary.Skipped), colors.Reset)
	}
	return nil
}

// connect establishes the execution engine against the configured fork endpoint.
func (f *Fuzzer) connect() error {
	executor, err := chain.NewForkExecutor(f.ctx, f.config.Fuzzing.ForkURL, logging.GlobalLogger)
	if err != nil {
		return err
	}
	f.executor = executor
	return nil
}

// disconnect releases the execution engine and the artifact cache.
func (f *Fuzzer) disconnect() {
	if f.executor != nil {
		f.executor.Close()
		f.executor = nil
	}
	if f.artifactCache != nil {
		_ = f.artifactCache.Close()
	}
}

// resolveTargetFiles expands the configured target paths into the list of contract source files to fuzz.
// Directories are searched recursively for .sol files.
func (f *Fuzzer) resolveTargetFiles() ([]string, error) {
	var targetFiles []string
	for _, target := range f.config.Fuzzing.TargetPaths {
		if utils.DirectoryExists(target) {
			found, err := utils.FindFilesWithExtension(target, ".sol")
			if err != nil {
				return nil, err
			}
			targetFiles = append(targetFiles, found...)
			continue
		}
		if !utils.FileExists(target) {
			return nil, errors.Errorf("target path does not exist: %s", target)
		}
		targetFiles = append(targetFiles, target)
	}
	return targetFiles, nil
}

// FuzzContractSource fuzzes every contract declared in the given source text: parse, compile, deploy, then run the
// configured number of iterations against each eligible method. The executor must be connected.
func (f *Fuzzer) FuzzContractSource(source string, filename string) (*FuzzSummary, error) {
	surfaces, err := contracts.ParseSource(source, filename)
	if err != nil {
		return nil, err
	}

	// Seed the generator with numeric literals from this contract's source, when enabled.
	if f.config.Fuzzing.SeedFromSource {
		valueSet := valuegeneration.NewValueSet()
		valueSet.SeedFromSource(source)
		f.generator.SetValueSet(valueSet)
	}

	summary := &FuzzSummary{}
	for i := range surfaces {
		surface := &surfaces[i]
		f.logger.Info("Fuzzing contract: ", colors.Bold, surface.Name, colors.Reset)

		if err := f.deployContract(surface, filename); err != nil {
			return nil, err
		}

		methods := surface.FuzzableMethods()
		if len(methods) == 0 {
			f.logger.Info("No public methods found to fuzz")
			continue
		}
		f.logger.Info(fmt.Sprintf("Starting fuzzing of %d method(s), %d iterations each", len(methods), f.config.Fuzzing.Runs))

		for i := range methods {
			method := &methods[i]
			if len(method.Parameters) == 0 && !f.config.Fuzzing.IncludeParameterless {
				f.logger.Info("Skipping method: ", method.Name, " (no input parameters)")
				continue
			}
			summary.Add(f.fuzzMethod(surface, method))
		}
	}
	return summary, nil
}

// deployContract compiles the contract, resolves and encodes its constructor arguments, and deploys it through
// the execution engine from the deployer account.
func (f *Fuzzer) deployContract(surface *contracts.ContractSurface, filename string) error {
	artifact, err := f.compiler.Compile(filename, surface.Name)
	if err != nil {
		return err
	}
	f.logger.Info(fmt.Sprintf("Contract compiled successfully (%d bytes)", len(artifact.InitBytecode)))

	var constructorArgs []byte
	if constructor := artifact.Abi.Constructor; len(constructor.Inputs) > 0 {
		f.logger.Info(fmt.Sprintf("Constructor requires %d parameter(s)", len(constructor.Inputs)))

		values, err := f.constructorArgs.ConstructorArgs(surface.Name, constructor.Inputs)
		if err != nil {
			return err
		}
		constructorArgs, err = artifact.Abi.Pack("", values...)
		if err != nil {
			return errors.WithMessagef(err, "could not encode constructor arguments for contract %s", surface.Name)
		}
		f.logger.Info(fmt.Sprintf("Constructor arguments encoded (%d bytes)", len(constructorArgs)))
	}

	// Deployments always originate from the deployer account.
	if err := f.executor.SetSender(0); err != nil {
		return err
	}
	address, err := f.executor.DeployContract(f.ctx, surface.Name, artifact.InitBytecode, constructorArgs)
	if err != nil {
		return err
	}
	f.logger.Info("Contract deployed at: ", address.Hex())
	return nil
}

// fuzzMethod runs the configured number of iterations against a single method, generating fresh arguments and
// rotating senders between invocations.
func (f *Fuzzer) fuzzMethod(surface *contracts.ContractSurface, method *contracts.Method) FuzzSummary {
	f.logger.Info("Fuzzing method: ", method.Name)

	summary := FuzzSummary{}
	paramTypes := method.ParameterTypes()
	signature := abiutils.Signature(method.Name, paramTypes)

	for i := 0; i < f.config.Fuzzing.Runs; i++ {
		if f.ctx.Err() != nil {
			break
		}

		values := make([]types.Value, len(paramTypes))
		unsupported := false
		for j, paramType := range paramTypes {
			values[j] = f.generator.GenerateValue(paramType)
			unsupported = unsupported || values[j].IsUnsupported()
		}
		if unsupported {
			summary.Skipped++
			continue
		}

		f.rotateSender()

		encodedArgs, err := abiutils.EncodeArguments(values)
		if err != nil {
			summary.Failed++
			f.reportFailure(surface, method, values, i, "ABI encoding failed: "+err.Error())
			continue
		}

		result, err := f.executor.CallMethod(f.ctx, surface.Name, signature, encodedArgs)
		if err != nil {
			summary.Failed++
			f.reportFailure(surface, method, values, i, err.Error())
			continue
		}

		if result.Success {
			summary.Passed++
		} else {
			summary.Failed++
			f.reportFailure(surface, method, values, i, result.Reason)
		}
	}
	return summary
}

// rotateSender picks the sender for the next invocation: with the configured bias (when more than one account is
// available) a uniformly random non-deployer account, otherwise the deployer.
func (f *Fuzzer) rotateSender() {
	accounts := f.executor.Accounts()
	senderIndex := 0
	if len(accounts) > 1 && f.randomProvider.Intn(100) < f.config.Fuzzing.SenderRotationBias {
		senderIndex = 1 + f.randomProvider.Intn(len(accounts)-1)
	}
	// The index is always within range here, so this cannot fail.
	_ = f.executor.SetSender(senderIndex)
}

// reportFailure emits the failure line for a failed invocation: contract, method, compact arguments, 1-based
// iteration index, and the cleaned failure reason.
func (f *Fuzzer) reportFailure(surface *contracts.ContractSurface, method *contracts.Method, values []types.Value, iteration int, reason string) {
	f.logger.Info(colors.Red, fmt.Sprintf("%s.%s(%s) FAILED on iteration %d: %s",
		surface.Name, method.Name, types.FormatValues(values), iteration+1, reason), colors.Reset)
}
