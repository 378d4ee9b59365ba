package valuegeneration

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeedFromSource ensures numeric literals in contract source are harvested along with their negations, and
// hex literals additionally seed addresses.
func TestSeedFromSource(t *testing.T) {
	source := `
contract Token {
    uint256 constant CAP = 1_000_000;
    uint256 constant UNIT = 1e18;
    address constant TREASURY = 0x000000000000000000000000000000000000dEaD;

    function mint(uint256 amount) public {
        require(amount <= 5000, "cap");
    }
}
`
	valueSet := NewValueSet()
	valueSet.SeedFromSource(source)

	integers := make(map[string]struct{})
	for _, v := range valueSet.Integers() {
		integers[v.String()] = struct{}{}
	}

	assert.Contains(t, integers, "1000000")
	assert.Contains(t, integers, "-1000000")
	assert.Contains(t, integers, "1000000000000000000")
	assert.Contains(t, integers, "5000")

	require.NotEmpty(t, valueSet.Addresses())
	assert.Contains(t, valueSet.Addresses(), common.HexToAddress("0x000000000000000000000000000000000000dEaD"))
}

// TestValueSetDeduplication ensures repeated literals are stored once.
func TestValueSetDeduplication(t *testing.T) {
	valueSet := NewValueSet()
	valueSet.AddInteger(big.NewInt(42))
	valueSet.AddInteger(big.NewInt(42))
	assert.Equal(t, 1, valueSet.Len())

	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	valueSet.AddAddress(addr)
	valueSet.AddAddress(addr)
	assert.Len(t, valueSet.Addresses(), 1)
}

// TestRandomUint256SkipsNegatives ensures negative harvested values are never returned as unsigned draws.
func TestRandomUint256SkipsNegatives(t *testing.T) {
	valueSet := NewValueSet()
	valueSet.AddInteger(big.NewInt(-7))
	randomProvider := rand.New(rand.NewSource(9))

	for i := 0; i < 20; i++ {
		assert.Nil(t, valueSet.RandomUint256(randomProvider))
	}

	valueSet.AddInteger(big.NewInt(7))
	sawPositive := false
	for i := 0; i < 50; i++ {
		if v := valueSet.RandomUint256(randomProvider); v != nil {
			sawPositive = true
			assert.Equal(t, uint64(7), v.Uint64())
		}
	}
	assert.True(t, sawPositive)
}
