package abiutils

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"math/rand"
	"testing"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransferSelector ensures the selector of the canonical ERC-20 transfer signature matches the well-known
// value.
func TestTransferSelector(t *testing.T) {
	selector := Selector("transfer(address,uint256)")
	assert.Equal(t, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, selector)
}

// TestSignatureFromDeclaredTypes ensures signatures are built from declared parameter types, including recursive
// canonical array element types and bare uint/int aliasing.
func TestSignatureFromDeclaredTypes(t *testing.T) {
	signature := Signature("store", []types.Type{
		types.ParseType("uint"),
		types.ParseType("uint8[]"),
		types.ParseType("bytes32"),
	})
	assert.Equal(t, "store(uint256,uint8[],bytes32)", signature)
}

// TestPackTransferCall ensures a complete transfer(address,uint256) invocation encodes to the expected layout:
// 4 selector bytes, the address word with the address in bytes [16, 36), and the amount as the final word.
func TestPackTransferCall(t *testing.T) {
	addr := common.HexToAddress("0x0000000000000000000000000000000000001234")
	values := []types.Value{
		{Type: types.Type{Kind: types.TypeAddress}, Addr: addr},
		{Type: types.Type{Kind: types.TypeUint256}, Uint: uint256.NewInt(1000)},
	}
	paramTypes := []types.Type{{Kind: types.TypeAddress}, {Kind: types.TypeUint256}}

	callData, err := PackCall("transfer", paramTypes, values)
	require.NoError(t, err)

	assert.Equal(t, 4+32+32, len(callData))
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, callData[:4])
	assert.Equal(t, addr.Bytes(), callData[16:36])
	assert.Equal(t, uint64(1000), new(big.Int).SetBytes(callData[36:68]).Uint64())
}

// TestStaticEncodings ensures each statically sized type pads to a single 32-byte word exactly as the calling
// convention requires.
func TestStaticEncodings(t *testing.T) {
	// An unsigned 8-bit value encodes to 31 zero bytes followed by the value.
	encoded, err := EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeUint8}, Uint: uint256.NewInt(0xAB)},
	})
	require.NoError(t, err)
	assert.Equal(t, append(make([]byte, 31), 0xAB), encoded)

	// An address encodes to 12 zero bytes followed by the 20 address bytes.
	addr := common.HexToAddress("0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	encoded, err = EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeAddress}, Addr: addr},
	})
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 12), encoded[:12])
	assert.Equal(t, addr.Bytes(), encoded[12:32])

	// Booleans encode to 31 zero bytes followed by 0x01/0x00.
	encoded, err = EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeBool}, Bool: true},
		{Type: types.Type{Kind: types.TypeBool}, Bool: false},
	})
	require.NoError(t, err)
	assert.Equal(t, append(make([]byte, 31), 0x01), encoded[:32])
	assert.Equal(t, make([]byte, 32), encoded[32:64])

	// Fixed-width byte strings left-align in the word.
	encoded, err = EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeBytes4}, Bytes: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, encoded[:4])
	assert.Equal(t, make([]byte, 28), encoded[4:])
}

// TestSignedEncodings ensures signed integers encode as two's complement extended to 256 bits.
func TestSignedEncodings(t *testing.T) {
	encoded, err := EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeInt256}, Int: big.NewInt(-1)},
	})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 32), encoded)

	encoded, err = EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeInt8}, Int: big.NewInt(-128)},
	})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 31), encoded[:31])
	assert.Equal(t, byte(0x80), encoded[31])
}

// TestEncodedLengthAlignment ensures every encoded blob of statically sized arguments is a multiple of 32 bytes.
func TestEncodedLengthAlignment(t *testing.T) {
	values := []types.Value{
		{Type: types.Type{Kind: types.TypeUint64}, Uint: uint256.NewInt(7)},
		{Type: types.Type{Kind: types.TypeBool}, Bool: true},
		{Type: types.Type{Kind: types.TypeBytes32}, Bytes: make([]byte, 32)},
	}
	encoded, err := EncodeArguments(values)
	require.NoError(t, err)
	assert.Equal(t, 0, len(encoded)%32)
	assert.Equal(t, len(values)*32, len(encoded))
}

// TestDynamicStringEncoding ensures strings use the two-phase head/tail layout: an offset word in the head, then
// a length word and padded payload in the tail.
func TestDynamicStringEncoding(t *testing.T) {
	encoded, err := EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeString}, Str: "AB"},
	})
	require.NoError(t, err)
	require.Equal(t, 96, len(encoded))

	// Head: offset to the tail (32, right past the single head word).
	assert.Equal(t, uint64(32), new(big.Int).SetBytes(encoded[:32]).Uint64())
	// Tail: length word followed by the padded payload.
	assert.Equal(t, uint64(2), new(big.Int).SetBytes(encoded[32:64]).Uint64())
	assert.Equal(t, byte('A'), encoded[64])
	assert.Equal(t, byte('B'), encoded[65])
	assert.Equal(t, make([]byte, 30), encoded[66:96])
}

// TestDynamicArrayEncoding ensures arrays encode their length followed by their recursively encoded elements, and
// that dynamic values mix correctly with static ones.
func TestDynamicArrayEncoding(t *testing.T) {
	elemType := types.Type{Kind: types.TypeUint256}
	arrayType := types.Type{Kind: types.TypeArray, Elem: &elemType}
	encoded, err := EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeUint8}, Uint: uint256.NewInt(9)},
		{Type: arrayType, Elems: []types.Value{
			{Type: elemType, Uint: uint256.NewInt(1)},
			{Type: elemType, Uint: uint256.NewInt(2)},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 5*32, len(encoded))

	// Head: the static uint8 word, then the array's offset (64 = two head words).
	assert.Equal(t, uint64(9), new(big.Int).SetBytes(encoded[:32]).Uint64())
	assert.Equal(t, uint64(64), new(big.Int).SetBytes(encoded[32:64]).Uint64())
	// Tail: array length, then both elements.
	assert.Equal(t, uint64(2), new(big.Int).SetBytes(encoded[64:96]).Uint64())
	assert.Equal(t, uint64(1), new(big.Int).SetBytes(encoded[96:128]).Uint64())
	assert.Equal(t, uint64(2), new(big.Int).SetBytes(encoded[128:160]).Uint64())
}

// TestUnsupportedValueEncoding ensures unsupported value variants fail with the dedicated error.
func TestUnsupportedValueEncoding(t *testing.T) {
	_, err := EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeUnsupported, Raw: "mapping"}},
	})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

// TestStaticRoundTrip ensures decoding the encoded form of statically sized values yields the original payload.
func TestStaticRoundTrip(t *testing.T) {
	randomProvider := rand.New(rand.NewSource(12345))
	roundTripTypes := []types.Type{
		{Kind: types.TypeUint8}, {Kind: types.TypeUint64}, {Kind: types.TypeUint256},
		{Kind: types.TypeInt16}, {Kind: types.TypeInt256},
		{Kind: types.TypeAddress}, {Kind: types.TypeBool}, {Kind: types.TypeBytes8},
	}

	for i := 0; i < 100; i++ {
		for _, roundTripType := range roundTripTypes {
			original := randomStaticValue(randomProvider, roundTripType)
			encoded, err := EncodeArguments([]types.Value{original})
			require.NoError(t, err)

			decoded, err := DecodeStaticWord(roundTripType, encoded)
			require.NoError(t, err)
			assertValuesEqual(t, original, decoded)
		}
	}
}

// randomStaticValue draws a random value of a statically sized type for round-trip testing.
func randomStaticValue(randomProvider *rand.Rand, t types.Type) types.Value {
	value := types.Value{Type: t}
	switch {
	case t.UnsignedBits() > 0:
		b := make([]byte, t.UnsignedBits()/8)
		randomProvider.Read(b)
		value.Uint = new(uint256.Int).SetBytes(b)
	case t.SignedBits() > 0:
		b := make([]byte, t.SignedBits()/8)
		randomProvider.Read(b)
		v := new(big.Int).SetBytes(b)
		if v.Bit(t.SignedBits()-1) == 1 {
			v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(t.SignedBits())))
		}
		value.Int = v
	case t.Kind == types.TypeAddress:
		randomProvider.Read(value.Addr[:])
	case t.Kind == types.TypeBool:
		value.Bool = randomProvider.Intn(2) == 1
	default:
		value.Bytes = make([]byte, t.FixedBytesSize())
		randomProvider.Read(value.Bytes)
	}
	return value
}

// assertValuesEqual asserts two values of the same static type carry identical payloads.
func assertValuesEqual(t *testing.T, expected types.Value, actual types.Value) {
	switch {
	case expected.Type.UnsignedBits() > 0:
		assert.True(t, expected.Uint.Eq(actual.Uint), "expected %s, got %s", expected.Uint.Dec(), actual.Uint.Dec())
	case expected.Type.SignedBits() > 0:
		assert.Zero(t, expected.Int.Cmp(actual.Int), "expected %s, got %s", expected.Int, actual.Int)
	case expected.Type.Kind == types.TypeAddress:
		assert.Equal(t, expected.Addr, actual.Addr)
	case expected.Type.Kind == types.TypeBool:
		assert.Equal(t, expected.Bool, actual.Bool)
	default:
		assert.Equal(t, expected.Bytes, actual.Bytes)
	}
}

// TestRevertReasonDecoding ensures Error(string) and Panic(uint256) return data decode to their carried values.
func TestRevertReasonDecoding(t *testing.T) {
	// Build Error("Insufficient balance") return data with our own encoder.
	payload, err := EncodeArguments([]types.Value{
		{Type: types.Type{Kind: types.TypeString}, Str: "Insufficient balance"},
	})
	require.NoError(t, err)
	errorSelector, err := hex.DecodeString("08c379a0")
	require.NoError(t, err)

	reason := GetSolidityRevertErrorString(append(errorSelector, payload...))
	require.NotNil(t, reason)
	assert.Equal(t, "Insufficient balance", *reason)

	// Build Panic(0x11) return data (arithmetic underflow/overflow).
	panicSelector, err := hex.DecodeString("4e487b71")
	require.NotNil(t, panicSelector)
	require.NoError(t, err)
	var codeWord [32]byte
	codeWord[31] = PanicCodeArithmeticUnderOverflow
	code := GetSolidityPanicCode(append(panicSelector, codeWord[:]...))
	require.NotNil(t, code)
	assert.Equal(t, int64(PanicCodeArithmeticUnderOverflow), code.Int64())
	assert.Contains(t, DescribePanicCode(code.Uint64()), "overflow")

	// Arbitrary data decodes to neither.
	assert.Nil(t, GetSolidityRevertErrorString([]byte{0x01, 0x02, 0x03, 0x04, 0x05}))
	assert.Nil(t, GetSolidityPanicCode([]byte{0x01, 0x02, 0x03, 0x04}))
}
