package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseType ensures source type tokens resolve to the expected type variants, including bare uint/int
// aliasing and array suffixes.
func TestParseType(t *testing.T) {
	tests := []struct {
		token    string
		expected TypeKind
	}{
		{"uint8", TypeUint8},
		{"uint128", TypeUint128},
		{"uint256", TypeUint256},
		{"uint", TypeUint256},
		{"int64", TypeInt64},
		{"int", TypeInt256},
		{"address", TypeAddress},
		{"bool", TypeBool},
		{"string", TypeString},
		{"bytes", TypeBytes},
		{"bytes32", TypeBytes32},
		{"mapping(address=>uint256)", TypeUnsupported},
		{"MyStruct", TypeUnsupported},
	}
	for _, tt := range tests {
		parsed := ParseType(tt.token)
		assert.Equal(t, tt.expected, parsed.Kind, "token %q", tt.token)
	}
}

// TestParseArrayType ensures array tokens parse recursively and render their canonical element types.
func TestParseArrayType(t *testing.T) {
	parsed := ParseType("uint8[]")
	require.Equal(t, TypeArray, parsed.Kind)
	require.NotNil(t, parsed.Elem)
	assert.Equal(t, TypeUint8, parsed.Elem.Kind)
	assert.Equal(t, "uint8[]", parsed.String())

	nested := ParseType("address[][]")
	require.Equal(t, TypeArray, nested.Kind)
	assert.Equal(t, "address[][]", nested.String())

	unsupportedElem := ParseType("MyStruct[]")
	assert.True(t, unsupportedElem.IsUnsupported())
}

// TestCanonicalNames ensures canonical renderings match the signature grammar, with bare aliases normalized.
func TestCanonicalNames(t *testing.T) {
	assert.Equal(t, "uint256", ParseType("uint").String())
	assert.Equal(t, "int256", ParseType("int").String())
	assert.Equal(t, "bytes4", ParseType("bytes4").String())
	assert.Equal(t, "string", ParseType("string").String())
}

// TestTypeWidths ensures the width accessors report the declared bit and byte widths.
func TestTypeWidths(t *testing.T) {
	assert.Equal(t, 128, ParseType("uint128").UnsignedBits())
	assert.Equal(t, 0, ParseType("int128").UnsignedBits())
	assert.Equal(t, 256, ParseType("int").SignedBits())
	assert.Equal(t, 16, ParseType("bytes16").FixedBytesSize())
	assert.Equal(t, 0, ParseType("bytes").FixedBytesSize())
}

// TestIsDynamic ensures only strings, byte vectors, and arrays report dynamic encoding.
func TestIsDynamic(t *testing.T) {
	assert.True(t, ParseType("string").IsDynamic())
	assert.True(t, ParseType("bytes").IsDynamic())
	assert.True(t, ParseType("uint256[]").IsDynamic())
	assert.False(t, ParseType("bytes32").IsDynamic())
	assert.False(t, ParseType("address").IsDynamic())
}

// TestValueDisplay ensures the compact display renderings stay stable, since they appear in failure report lines.
func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "1000", Value{Type: Type{Kind: TypeUint256}, Uint: uint256.NewInt(1000)}.String())
	assert.Equal(t, "-5", Value{Type: Type{Kind: TypeInt64}, Int: big.NewInt(-5)}.String())
	assert.Equal(t, "true", Value{Type: Type{Kind: TypeBool}, Bool: true}.String())
	assert.Equal(t, `"hi"`, Value{Type: Type{Kind: TypeString}, Str: "hi"}.String())

	addr := Value{Type: Type{Kind: TypeAddress}, Addr: common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")}
	assert.Equal(t, "0xf39...66", addr.String())

	elemType := Type{Kind: TypeUint8}
	short := Value{Type: Type{Kind: TypeArray, Elem: &elemType}, Elems: []Value{
		{Type: elemType, Uint: uint256.NewInt(1)},
		{Type: elemType, Uint: uint256.NewInt(2)},
	}}
	assert.Equal(t, "[1, 2]", short.String())

	long := Value{Type: Type{Kind: TypeArray, Elem: &elemType}, Elems: make([]Value, 5)}
	for i := range long.Elems {
		long.Elems[i] = Value{Type: elemType, Uint: uint256.NewInt(uint64(i))}
	}
	assert.Equal(t, "[5 items]", long.String())
}

// TestValueUnsupported ensures unsupported placeholders are detected directly and through array elements.
func TestValueUnsupported(t *testing.T) {
	assert.True(t, Value{Type: Type{Kind: TypeUnsupported}}.IsUnsupported())
	assert.False(t, Value{Type: Type{Kind: TypeBool}}.IsUnsupported())

	elemType := Type{Kind: TypeUnsupported}
	arr := Value{Type: Type{Kind: TypeArray, Elem: &elemType}, Elems: []Value{{Type: elemType}}}
	assert.True(t, arr.IsUnsupported())
}
