package fuzzing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyVulnerability ensures benchmark contracts classify from their paths.
func TestClassifyVulnerability(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"benchmarks/reentrancy/Bank.sol", "reentrancy"},
		{"benchmarks/OverflowToken.sol", "integer_overflow"},
		{"benchmarks/access/Admin.sol", "access_control"},
		{"benchmarks/unchecked_send.sol", "unchecked_call"},
		{"benchmarks/FlashloanPool.sol", "flashloan"},
		{"benchmarks/price/Amm.sol", "price_manipulation"},
		{"benchmarks/LogicBug.sol", "logic_flaw"},
		{"benchmarks/OracleFeed.sol", "bad_oracle"},
		{"benchmarks/Misc.sol", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, classifyVulnerability(tt.path), "path %q", tt.path)
	}
}

// TestFindBenchmarkContracts ensures the sweep discovers .sol files recursively while excluding vendored
// libraries and known helper sources, in sorted order.
func TestFindBenchmarkContracts(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(relPath string) {
		path := filepath.Join(dir, relPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("contract X {}"), 0644))
	}

	mustWrite("reentrancy/Bank.sol")
	mustWrite("overflow/Token.sol")
	mustWrite("lib/forge-std/Test.sol")
	mustWrite("interface.sol")
	mustWrite("basetest.sol")
	mustWrite("README.md")

	found, err := findBenchmarkContracts(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, filepath.Join(dir, "overflow", "Token.sol"), found[0])
	assert.Equal(t, filepath.Join(dir, "reentrancy", "Bank.sol"), found[1])
}
