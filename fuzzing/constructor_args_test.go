package fuzzing

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustNewType builds an abi.Type for tests.
func mustNewType(t *testing.T, name string) abi.Type {
	parsed, err := abi.NewType(name, "", nil)
	require.NoError(t, err)
	return parsed
}

// TestConfigConstructorArgs ensures configured values convert into the Go representations the ABI packer expects,
// in declaration order.
func TestConfigConstructorArgs(t *testing.T) {
	provider := &ConfigConstructorArgProvider{Args: map[string]map[string]any{
		"Vault": {
			"initialSupply": "1000000000000000000000",
			"admin":         "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			"paused":        false,
			"name":          "Vault Token",
			"cap":           float64(5000),
		},
	}}

	inputs := abi.Arguments{
		{Name: "initialSupply", Type: mustNewType(t, "uint256")},
		{Name: "admin", Type: mustNewType(t, "address")},
		{Name: "paused", Type: mustNewType(t, "bool")},
		{Name: "name", Type: mustNewType(t, "string")},
		{Name: "cap", Type: mustNewType(t, "uint32")},
	}

	values, err := provider.ConstructorArgs("Vault", inputs)
	require.NoError(t, err)
	require.Len(t, values, 5)

	expectedSupply, _ := new(big.Int).SetString("1000000000000000000000", 10)
	assert.Zero(t, expectedSupply.Cmp(values[0].(*big.Int)))
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), values[1])
	assert.Equal(t, false, values[2])
	assert.Equal(t, "Vault Token", values[3])
	assert.Equal(t, uint32(5000), values[4])

	// The converted values must be packable by the ABI encoder.
	_, err = inputs.Pack(values...)
	assert.NoError(t, err)
}

// TestConfigConstructorArgsFixedBytes ensures hex strings convert into fixed byte arrays of the declared width.
func TestConfigConstructorArgsFixedBytes(t *testing.T) {
	provider := &ConfigConstructorArgProvider{Args: map[string]map[string]any{
		"Vault": {"salt": "0xdeadbeef"},
	}}
	inputs := abi.Arguments{{Name: "salt", Type: mustNewType(t, "bytes4")}}

	values, err := provider.ConstructorArgs("Vault", inputs)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0xde, 0xad, 0xbe, 0xef}, values[0])

	// A width mismatch is rejected.
	provider.Args["Vault"]["salt"] = "0xdead"
	_, err = provider.ConstructorArgs("Vault", inputs)
	assert.Error(t, err)
}

// TestConfigConstructorArgsMissing ensures a missing configured value names the parameter and contract.
func TestConfigConstructorArgsMissing(t *testing.T) {
	provider := &ConfigConstructorArgProvider{}
	inputs := abi.Arguments{{Name: "admin", Type: mustNewType(t, "address")}}

	_, err := provider.ConstructorArgs("Vault", inputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin")
	assert.Contains(t, err.Error(), "Vault")
}

// TestConfigConstructorArgsInvalid ensures malformed values are rejected with context.
func TestConfigConstructorArgsInvalid(t *testing.T) {
	provider := &ConfigConstructorArgProvider{Args: map[string]map[string]any{
		"Vault": {"admin": "not-an-address"},
	}}
	inputs := abi.Arguments{{Name: "admin", Type: mustNewType(t, "address")}}

	_, err := provider.ConstructorArgs("Vault", inputs)
	assert.Error(t, err)
}
