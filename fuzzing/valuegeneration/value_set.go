package valuegeneration

import (
	"math/big"
	"math/rand"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// literalPattern matches numeric literals in contract source: hex literals and decimal literals with optional
// underscore separators and scientific notation (e.g. 1_000, 1e18, 2.5e10).
var literalPattern = regexp.MustCompile(`\b(0x[0-9a-fA-F]+|\d[\d_]*(?:\.\d+)?(?:[eE]\d+)?)\b`)

// ValueSet holds integers harvested from contract source literals. Mixing these into generated 256-bit values
// steers fuzzing toward the thresholds and magic constants the contract actually compares against.
type ValueSet struct {
	integers []*big.Int
	seen     map[string]struct{}

	addresses []common.Address
	seenAddrs map[common.Address]struct{}
}

// NewValueSet creates an empty ValueSet.
func NewValueSet() *ValueSet {
	return &ValueSet{
		seen:      make(map[string]struct{}),
		seenAddrs: make(map[common.Address]struct{}),
	}
}

// AddInteger adds an integer to the set, deduplicating by value.
func (vs *ValueSet) AddInteger(v *big.Int) {
	key := v.String()
	if _, exists := vs.seen[key]; exists {
		return
	}
	vs.seen[key] = struct{}{}
	vs.integers = append(vs.integers, new(big.Int).Set(v))
}

// AddAddress adds an address to the set, deduplicating by value.
func (vs *ValueSet) AddAddress(addr common.Address) {
	if _, exists := vs.seenAddrs[addr]; exists {
		return
	}
	vs.seenAddrs[addr] = struct{}{}
	vs.addresses = append(vs.addresses, addr)
}

// Integers returns the harvested integers in insertion order.
func (vs *ValueSet) Integers() []*big.Int {
	return vs.integers
}

// Addresses returns the harvested addresses in insertion order.
func (vs *ValueSet) Addresses() []common.Address {
	return vs.addresses
}

// Len returns the number of integers in the set.
func (vs *ValueSet) Len() int {
	return len(vs.integers)
}

// RandomUint256 draws a random harvested integer that fits an unsigned 256-bit word, or nil if none qualifies.
func (vs *ValueSet) RandomUint256(randomProvider *rand.Rand) *uint256.Int {
	var candidates []*uint256.Int
	for _, integer := range vs.integers {
		if integer.Sign() < 0 {
			continue
		}
		if v, overflow := uint256.FromBig(integer); !overflow {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[randomProvider.Intn(len(candidates))]
}

// SeedFromSource scans contract source text for numeric literals and adds each (and its negation) to the set.
// Hex literals that fit 160 bits are additionally added as addresses.
func (vs *ValueSet) SeedFromSource(source string) {
	for _, token := range literalPattern.FindAllString(source, -1) {
		if strings.HasPrefix(token, "0x") {
			if v, ok := new(big.Int).SetString(token[2:], 16); ok {
				vs.AddInteger(v)
				vs.AddInteger(new(big.Int).Neg(v))
				if v.BitLen() <= common.AddressLength*8 {
					vs.AddAddress(common.BigToAddress(v))
				}
			}
			continue
		}

		// Decimal handles underscore-free plain integers as well as decimal points and scientific notation the
		// way Solidity literals are written.
		d, err := decimal.NewFromString(strings.ReplaceAll(token, "_", ""))
		if err != nil || !d.IsInteger() {
			continue
		}
		v := d.BigInt()
		vs.AddInteger(v)
		vs.AddInteger(new(big.Int).Neg(v))
	}
}
