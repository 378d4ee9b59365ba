package fuzzing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ExtropyIO/Fuzzhead/logging/colors"
	"github.com/ExtropyIO/Fuzzhead/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// benchmarkSkipFiles lists support sources inside benchmark suites that are not themselves fuzzing targets.
var benchmarkSkipFiles = []string{"interface.sol", "basetest.sol", "tokenhelper.sol", "stablemath.sol"}

// BenchmarkResult records the outcome of fuzzing a single benchmark contract.
type BenchmarkResult struct {
	// Contract is the benchmark contract's file name.
	Contract string `json:"contract"`

	// ContractPath is the full path of the benchmark source file.
	ContractPath string `json:"contract_path"`

	// VulnerabilityType classifies the defect the benchmark contract is expected to contain, derived from its
	// path.
	VulnerabilityType string `json:"vulnerability_type"`

	// Detected indicates at least one fuzzed invocation failed, i.e. the expected defect surfaced.
	Detected bool `json:"detected"`

	// ExecutionTime is how long fuzzing this contract took.
	ExecutionTime time.Duration `json:"execution_time"`

	// Error carries the fatal error that aborted this contract's run, if any.
	Error string `json:"error,omitempty"`

	// Passed, Failed, and Skipped tally the contract's invocation outcomes.
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// BenchmarkSummary aggregates a benchmark sweep across contracts.
type BenchmarkSummary struct {
	// Total is the number of contracts swept.
	Total int `json:"total"`

	// Detected is the number of contracts whose expected defect surfaced.
	Detected int `json:"detected"`

	// Missed is the number of contracts whose expected defect did not surface.
	Missed int `json:"missed"`

	// ExecutionTime is the total sweep duration.
	ExecutionTime time.Duration `json:"execution_time"`

	// Results holds the per-contract outcomes.
	Results []BenchmarkResult `json:"results"`
}

// RunBenchmark sweeps a directory of benchmark contracts, fuzzing each one and recording whether its expected
// vulnerability was detected. Unlike Start, per-contract fatal errors (compilation, deployment) do not abort the
// sweep; they are recorded on the contract's result. A maxContracts of zero sweeps every discovered contract.
func (f *Fuzzer) RunBenchmark(benchmarkDir string, maxContracts int) (*BenchmarkSummary, error) {
	if err := f.connect(); err != nil {
		return nil, err
	}
	defer f.disconnect()

	contractPaths, err := findBenchmarkContracts(benchmarkDir)
	if err != nil {
		return nil, err
	}
	if len(contractPaths) == 0 {
		return nil, errors.Errorf("no benchmark contracts found under %s", benchmarkDir)
	}
	if maxContracts > 0 && len(contractPaths) > maxContracts {
		contractPaths = contractPaths[:maxContracts]
	}

	summary := &BenchmarkSummary{}
	sweepStart := time.Now()

	for _, contractPath := range contractPaths {
		if f.ctx.Err() != nil {
			break
		}
		f.logger.Info("Benchmarking: ", colors.Cyan, filepath.Base(contractPath), colors.Reset)

		result := BenchmarkResult{
			Contract:          filepath.Base(contractPath),
			ContractPath:      contractPath,
			VulnerabilityType: classifyVulnerability(contractPath),
		}
		contractStart := time.Now()

		source, err := os.ReadFile(contractPath)
		if err != nil {
			result.Error = err.Error()
		} else if contractSummary, err := f.FuzzContractSource(string(source), contractPath); err != nil {
			result.Error = err.Error()
		} else {
			result.Passed = contractSummary.Passed
			result.Failed = contractSummary.Failed
			result.Skipped = contractSummary.Skipped
			result.Detected = contractSummary.Failed > 0
			f.summary.Add(*contractSummary)
		}

		result.ExecutionTime = time.Since(contractStart)
		if result.Detected {
			summary.Detected++
		} else {
			summary.Missed++
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Total = len(summary.Results)
	summary.ExecutionTime = time.Since(sweepStart)
	return summary, nil
}

// ReportBenchmark logs the per-contract and aggregate results of a benchmark sweep.
func (f *Fuzzer) ReportBenchmark(summary *BenchmarkSummary) {
	f.logger.Info("Benchmark results:")
	for _, result := range summary.Results {
		status := colors.GreenBold("DETECTED")
		if !result.Detected {
			status = colors.RedBold("MISSED")
		}
		line := fmt.Sprintf("%-10s %-45s %-20s passed=%d failed=%d skipped=%d (%s)",
			status, result.Contract, result.VulnerabilityType,
			result.Passed, result.Failed, result.Skipped, result.ExecutionTime.Round(time.Millisecond))
		if result.Error != "" {
			line += " error: " + utils.TruncateString(result.Error, 200)
		}
		f.logger.Info(line)
	}
	f.logger.Info(fmt.Sprintf("Total: %d contracts, %d detected, %d missed in %s",
		summary.Total, summary.Detected, summary.Missed, summary.ExecutionTime.Round(time.Millisecond)))
}

// findBenchmarkContracts collects the .sol files under the benchmark directory, excluding vendored libraries and
// known helper sources, sorted for a stable sweep order.
func findBenchmarkContracts(benchmarkDir string) ([]string, error) {
	found, err := utils.FindFilesWithExtension(benchmarkDir, ".sol")
	if err != nil {
		return nil, err
	}

	var contractPaths []string
	for _, path := range found {
		normalized := strings.ToLower(filepath.ToSlash(path))
		if strings.Contains(normalized, "/lib/") {
			continue
		}
		if slices.Contains(benchmarkSkipFiles, filepath.Base(normalized)) {
			continue
		}
		contractPaths = append(contractPaths, path)
	}
	slices.Sort(contractPaths)
	return contractPaths, nil
}

// classifyVulnerability derives the expected vulnerability class of a benchmark contract from its path.
func classifyVulnerability(contractPath string) string {
	normalized := strings.ToLower(filepath.ToSlash(contractPath))
	switch {
	case strings.Contains(normalized, "reentrancy"):
		return "reentrancy"
	case strings.Contains(normalized, "overflow"):
		return "integer_overflow"
	case strings.Contains(normalized, "access"):
		return "access_control"
	case strings.Contains(normalized, "unchecked"):
		return "unchecked_call"
	case strings.Contains(normalized, "flashloan"):
		return "flashloan"
	case strings.Contains(normalized, "price"):
		return "price_manipulation"
	case strings.Contains(normalized, "logic"):
		return "logic_flaw"
	case strings.Contains(normalized, "oracle"):
		return "bad_oracle"
	default:
		return "unknown"
	}
}
