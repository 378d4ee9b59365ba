package contracts

import (
	"testing"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContractSource is a representative single-contract source exercising the declaration shapes the scanner
// recognizes.
const testContractSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

contract Vault {
    address public owner;

    constructor(uint256 initialSupply, address admin) {
        owner = admin;
    }

    function deposit(uint256 amount) public {
    }

    function sweep(address to, uint256 amount) external {
    }

    function rebalance(uint256[] memory weights) public {
    }

    function audit(MyStruct calldata record) public {
    }

    function helper(uint256 x) internal returns (uint256) {
    }

    function secret(uint256 x) private {
    }

    function implicitlyPublic(uint256 x) {
    }

    fallback() external {
    }

    receive() external payable {
    }
}
`

// TestParseContractSurface ensures the scanner extracts the contract name and each declared method with its
// visibility, parameters, and special-method flags.
func TestParseContractSurface(t *testing.T) {
	surfaces, err := ParseSource(testContractSource, "Vault.sol")
	require.NoError(t, err)
	require.Len(t, surfaces, 1)

	surface := surfaces[0]
	assert.Equal(t, "Vault", surface.Name)
	require.Len(t, surface.Methods, 10)

	constructor := surface.Constructor()
	require.NotNil(t, constructor)
	assert.Equal(t, "constructor", constructor.Name)
	require.Len(t, constructor.Parameters, 2)
	assert.Equal(t, types.TypeUint256, constructor.Parameters[0].Type.Kind)
	assert.Equal(t, "initialSupply", constructor.Parameters[0].Name)
	assert.Equal(t, types.TypeAddress, constructor.Parameters[1].Type.Kind)

	byName := make(map[string]Method)
	for _, method := range surface.Methods {
		byName[method.Name] = method
	}

	assert.Equal(t, VisibilityPublic, byName["deposit"].Visibility)
	assert.Equal(t, VisibilityExternal, byName["sweep"].Visibility)
	assert.Equal(t, VisibilityInternal, byName["helper"].Visibility)
	assert.Equal(t, VisibilityPrivate, byName["secret"].Visibility)
	// Visibility defaults to public when no keyword is present.
	assert.Equal(t, VisibilityPublic, byName["implicitlyPublic"].Visibility)

	require.Len(t, byName["sweep"].Parameters, 2)
	assert.Equal(t, types.TypeAddress, byName["sweep"].Parameters[0].Type.Kind)
	assert.Equal(t, "to", byName["sweep"].Parameters[0].Name)

	// Array parameters resolve recursively.
	require.Len(t, byName["rebalance"].Parameters, 1)
	assert.Equal(t, types.TypeArray, byName["rebalance"].Parameters[0].Type.Kind)
	assert.Equal(t, "uint256[]", byName["rebalance"].Parameters[0].Type.String())

	// Unknown type tokens map to the unsupported placeholder rather than being misread.
	require.Len(t, byName["audit"].Parameters, 1)
	assert.True(t, byName["audit"].Parameters[0].Type.IsUnsupported())

	assert.True(t, byName["fallback"].IsFallback)
	assert.True(t, byName["receive"].IsReceive)
}

// TestFuzzableMethods ensures eligibility filtering keeps only public/external non-special methods.
func TestFuzzableMethods(t *testing.T) {
	surfaces, err := ParseSource(testContractSource, "Vault.sol")
	require.NoError(t, err)

	eligible := surfaces[0].FuzzableMethods()
	names := make([]string, len(eligible))
	for i, method := range eligible {
		names[i] = method.Name
	}
	assert.Equal(t, []string{"deposit", "sweep", "rebalance", "audit", "implicitlyPublic"}, names)
}

// TestParseMultipleContracts ensures methods group under their own contract headers.
func TestParseMultipleContracts(t *testing.T) {
	source := `
contract First {
    function a(uint256 x) public {}
}

contract Second {
    function b(uint256 x) public {}
    function c(bool flag) external {}
}
`
	surfaces, err := ParseSource(source, "Pair.sol")
	require.NoError(t, err)
	require.Len(t, surfaces, 2)
	assert.Equal(t, "First", surfaces[0].Name)
	require.Len(t, surfaces[0].Methods, 1)
	assert.Equal(t, "Second", surfaces[1].Name)
	require.Len(t, surfaces[1].Methods, 2)
}

// TestParseWithoutContractHeader ensures flat snippets still produce a surface under the placeholder name.
func TestParseWithoutContractHeader(t *testing.T) {
	surfaces, err := ParseSource("function loose(uint256 x) public {}", "loose.sol")
	require.NoError(t, err)
	require.Len(t, surfaces, 1)
	assert.Equal(t, "UnknownContract", surfaces[0].Name)
	require.Len(t, surfaces[0].Methods, 1)
}

// TestParseEmptyParameterList ensures zero-parameter declarations yield no parameters.
func TestParseEmptyParameterList(t *testing.T) {
	surfaces, err := ParseSource("contract C {\n    function ping() public {}\n}", "C.sol")
	require.NoError(t, err)
	require.Len(t, surfaces[0].Methods, 1)
	assert.Empty(t, surfaces[0].Methods[0].Parameters)
}
