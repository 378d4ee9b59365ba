// Package valuegeneration produces randomized, boundary-biased argument values for fuzzed method invocations.
// Distributions concentrate test mass on numeric boundaries empirically associated with overflow, off-by-one, and
// threshold bugs, while retaining coverage of arbitrary values.
package valuegeneration

import (
	"math/big"
	"math/rand"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// wellKnownTestAddresses are funded accounts present on well-known local development chains. A share of generated
// address values draws from this set so fuzzed calls exercise privileged/funded account paths.
var wellKnownTestAddresses = []common.Address{
	common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
	common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"),
	common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"),
}

// RandomValueGeneratorConfig defines the parameters for a RandomValueGenerator.
type RandomValueGeneratorConfig struct {
	// MaxStringLength is the exclusive upper bound on generated string lengths.
	MaxStringLength int

	// MaxBytesLength is the exclusive upper bound on generated dynamic byte vector lengths.
	MaxBytesLength int

	// MaxArrayLength is the exclusive upper bound on generated array lengths.
	MaxArrayLength int

	// ValueSetProbability is the percent chance [0,100] that a 256-bit unsigned draw is taken from the seeded
	// value set instead of the banded distribution. Zero disables value set draws.
	ValueSetProbability int
}

// DefaultRandomValueGeneratorConfig returns the standard generation parameters.
func DefaultRandomValueGeneratorConfig() *RandomValueGeneratorConfig {
	return &RandomValueGeneratorConfig{
		MaxStringLength:     50,
		MaxBytesLength:      256,
		MaxArrayLength:      10,
		ValueSetProbability: 0,
	}
}

// RandomValueGenerator generates concrete argument values for declared parameter types using a random provider.
// Generation is infallible by construction: an unsupported type yields the placeholder variant, which the driver
// treats as "skip this iteration".
type RandomValueGenerator struct {
	// config describes the configuration defining value generation parameters.
	config *RandomValueGeneratorConfig

	// randomProvider offers a source of random data.
	randomProvider *rand.Rand

	// valueSet optionally holds integers harvested from the contract source to mix into 256-bit draws.
	valueSet *ValueSet
}

// NewRandomValueGenerator creates a new RandomValueGenerator with the provided config and random provider.
func NewRandomValueGenerator(config *RandomValueGeneratorConfig, randomProvider *rand.Rand) *RandomValueGenerator {
	return &RandomValueGenerator{
		config:         config,
		randomProvider: randomProvider,
	}
}

// SetValueSet attaches a seeded value set for 256-bit unsigned draws.
func (g *RandomValueGenerator) SetValueSet(valueSet *ValueSet) {
	g.valueSet = valueSet
}

// GenerateValue produces a random value for the given parameter type.
func (g *RandomValueGenerator) GenerateValue(t types.Type) types.Value {
	switch {
	case t.Kind == types.TypeUint256:
		return types.Value{Type: t, Uint: g.generateUint256()}
	case t.UnsignedBits() > 0:
		// Widths narrower than 256 bits draw uniformly from their full representable range.
		return types.Value{Type: t, Uint: g.randomUint(t.UnsignedBits())}
	case t.Kind == types.TypeInt256:
		return types.Value{Type: t, Int: g.generateInt256()}
	case t.SignedBits() > 0:
		return types.Value{Type: t, Int: g.randomInt(t.SignedBits())}
	case t.Kind == types.TypeAddress:
		return types.Value{Type: t, Addr: g.generateAddress()}
	case t.Kind == types.TypeBool:
		return types.Value{Type: t, Bool: g.randomProvider.Intn(2) == 1}
	case t.Kind == types.TypeString:
		return types.Value{Type: t, Str: g.generateString()}
	case t.Kind == types.TypeBytes:
		return types.Value{Type: t, Bytes: g.randomBytes(g.randomProvider.Intn(g.config.MaxBytesLength))}
	case t.FixedBytesSize() > 0:
		return types.Value{Type: t, Bytes: g.randomBytes(t.FixedBytesSize())}
	case t.Kind == types.TypeArray:
		length := g.randomProvider.Intn(g.config.MaxArrayLength)
		elems := make([]types.Value, length)
		for i := range elems {
			elems[i] = g.GenerateValue(*t.Elem)
		}
		return types.Value{Type: t, Elems: elems}
	default:
		return types.Value{Type: types.Type{Kind: types.TypeUnsupported, Raw: t.Raw}}
	}
}

// generateUint256 draws a 256-bit unsigned integer from a banded distribution that concentrates on common
// bug-triggering boundaries: small ranges, powers of two and ten, and width-boundary edge values.
func (g *RandomValueGenerator) generateUint256() *uint256.Int {
	// When a value set was seeded from source literals, draw from it with the configured probability.
	if g.valueSet != nil && g.config.ValueSetProbability > 0 && g.valueSet.Len() > 0 &&
		g.randomProvider.Intn(100) < g.config.ValueSetProbability {
		if v := g.valueSet.RandomUint256(g.randomProvider); v != nil {
			return v
		}
	}

	strategy := g.randomProvider.Intn(100)
	switch {
	case strategy < 20:
		// Very small values: counters, indices, percentages, small IDs.
		return uint256.NewInt(uint64(g.randomProvider.Int63n(101)))
	case strategy < 40:
		// Small-medium values: amounts, IDs, array sizes.
		return uint256.NewInt(uint64(100 + g.randomProvider.Int63n(100_000-100+1)))
	case strategy < 55:
		// Medium-large values: larger amounts, recent timestamps.
		return uint256.NewInt(uint64(100_000 + g.randomProvider.Int63n(10_000_000-100_000+1)))
	case strategy < 65:
		// Edge cases: boundaries that often cause bugs.
		switch g.randomProvider.Intn(6) {
		case 0:
			return uint256.NewInt(0)
		case 1:
			return uint256.NewInt(1)
		case 2:
			return uint256.NewInt(2)
		case 3:
			return uint256.NewInt(1<<32 - 1)
		case 4:
			return new(uint256.Int).SetUint64(^uint64(0))
		default:
			return new(uint256.Int).SetAllOne()
		}
	case strategy < 80:
		// Powers of two: bit flags, sizes, overflow at width boundaries.
		power := uint(g.randomProvider.Intn(256))
		return new(uint256.Int).Lsh(uint256.NewInt(1), power)
	case strategy < 90:
		// Powers of ten: decimal math, price calculations.
		power := uint64(g.randomProvider.Intn(39))
		return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(power))
	default:
		// Arbitrary 128-bit values for stress testing.
		return new(uint256.Int).SetBytes(g.randomBytes(16))
	}
}

// generateInt256 draws a 256-bit signed integer emphasizing values around zero and signed width boundaries.
func (g *RandomValueGenerator) generateInt256() *big.Int {
	strategy := g.randomProvider.Intn(100)
	switch {
	case strategy < 25:
		// Small values around zero.
		return big.NewInt(g.randomProvider.Int63n(201) - 100)
	case strategy < 50:
		// Medium positive and negative values.
		return big.NewInt(g.randomProvider.Int63n(200_001) - 100_000)
	case strategy < 65:
		// Edge cases for signed integers: zero, units, and the 32/64-bit sign boundaries.
		edges := []*big.Int{
			big.NewInt(0),
			big.NewInt(1),
			big.NewInt(-1),
			new(big.Int).Lsh(big.NewInt(1), 31),
			new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 31)),
			new(big.Int).Lsh(big.NewInt(1), 63),
			new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 63)),
		}
		return new(big.Int).Set(edges[g.randomProvider.Intn(len(edges))])
	case strategy < 80:
		// Negative boundary testing.
		return big.NewInt(-(1 + g.randomProvider.Int63n(1_000_000)))
	default:
		// Large random values, both positive and negative.
		return big.NewInt(int64(g.randomProvider.Uint64()))
	}
}

// generateAddress draws an address value: mostly arbitrary 160-bit values, with shares reserved for the well-known
// funded accounts, the zero address, and low precompile-range addresses.
func (g *RandomValueGenerator) generateAddress() common.Address {
	strategy := g.randomProvider.Intn(100)
	switch {
	case strategy < 25:
		return wellKnownTestAddresses[g.randomProvider.Intn(len(wellKnownTestAddresses))]
	case strategy < 35:
		return common.Address{}
	case strategy < 40:
		var addr common.Address
		addr[len(addr)-1] = byte(1 + g.randomProvider.Intn(19))
		return addr
	default:
		var addr common.Address
		g.randomProvider.Read(addr[:])
		return addr
	}
}

// generateString draws a string of printable ASCII characters.
func (g *RandomValueGenerator) generateString() string {
	length := g.randomProvider.Intn(g.config.MaxStringLength)
	chars := make([]byte, length)
	for i := range chars {
		chars[i] = byte(32 + g.randomProvider.Intn(127-32))
	}
	return string(chars)
}

// randomUint draws a uniform unsigned integer of the given bit width.
func (g *RandomValueGenerator) randomUint(bits int) *uint256.Int {
	return new(uint256.Int).SetBytes(g.randomBytes(bits / 8))
}

// randomInt draws a uniform signed integer of the given bit width, interpreting the drawn bytes as two's
// complement.
func (g *RandomValueGenerator) randomInt(bits int) *big.Int {
	v := new(big.Int).SetBytes(g.randomBytes(bits / 8))
	if v.Bit(bits-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	return v
}

// randomBytes draws length uniform random bytes.
func (g *RandomValueGenerator) randomBytes(length int) []byte {
	b := make([]byte, length)
	g.randomProvider.Read(b)
	return b
}

// RandomProvider returns the internal random provider used for value generation.
func (g *RandomValueGenerator) RandomProvider() *rand.Rand {
	return g.randomProvider
}
