package abiutils

import (
	"math/big"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// WordLength is the length of an ABI word in bytes. All encoded arguments are aligned to this width.
const WordLength = 32

// ErrUnsupportedValue indicates a value variant the encoder cannot represent in calldata.
var ErrUnsupportedValue = errors.New("unsupported value variant for ABI encoding")

// twosComplementModulus is 2^256, used to map negative signed integers onto their two's complement word.
var twosComplementModulus = new(big.Int).Lsh(big.NewInt(1), 256)

// EncodeArguments encodes an ordered argument tuple into its ABI representation. Statically sized values occupy
// one 32-byte word in the head. Dynamic values (strings, byte vectors, arrays) place a byte offset in the head and
// their length-prefixed payload in the tail, per the two-phase head/tail convention.
func EncodeArguments(values []types.Value) ([]byte, error) {
	headLength := len(values) * WordLength
	head := make([]byte, 0, headLength)
	var tail []byte

	for _, value := range values {
		if value.Type.IsDynamic() {
			// The head holds the payload's offset from the start of the encoded tuple.
			offset := encodeUint64Word(uint64(headLength + len(tail)))
			head = append(head, offset[:]...)

			payload, err := encodeDynamicPayload(value)
			if err != nil {
				return nil, err
			}
			tail = append(tail, payload...)
			continue
		}

		word, err := encodeStaticWord(value)
		if err != nil {
			return nil, err
		}
		head = append(head, word[:]...)
	}

	return append(head, tail...), nil
}

// encodeStaticWord encodes a statically sized value into a single 32-byte word.
func encodeStaticWord(value types.Value) ([WordLength]byte, error) {
	var word [WordLength]byte

	switch {
	case value.Type.UnsignedBits() > 0:
		// Big-endian, right-aligned in the word.
		word = value.Uint.Bytes32()
	case value.Type.SignedBits() > 0:
		// Two's complement extended to 256 bits.
		payload := value.Int
		if payload.Sign() < 0 {
			payload = new(big.Int).Add(twosComplementModulus, payload)
		}
		payload.FillBytes(word[:])
	case value.Type.Kind == types.TypeAddress:
		// The address occupies the low 20 bytes of a zero-padded word.
		copy(word[WordLength-len(value.Addr):], value.Addr[:])
	case value.Type.Kind == types.TypeBool:
		if value.Bool {
			word[WordLength-1] = 1
		}
	case value.Type.FixedBytesSize() > 0:
		// Fixed-width byte strings left-align in the word.
		copy(word[:], value.Bytes)
	default:
		return word, errors.Wrapf(ErrUnsupportedValue, "cannot encode %s", value.Type.String())
	}

	return word, nil
}

// encodeDynamicPayload encodes the tail portion of a dynamic value: a length word followed by the padded payload.
// Array payloads recursively encode their elements as a nested tuple, so arrays of dynamic elements lay out their
// own head/tail regions relative to the position after the length word.
func encodeDynamicPayload(value types.Value) ([]byte, error) {
	switch value.Type.Kind {
	case types.TypeString:
		return encodeLengthPrefixedBytes([]byte(value.Str)), nil
	case types.TypeBytes:
		return encodeLengthPrefixedBytes(value.Bytes), nil
	case types.TypeArray:
		lengthWord := encodeUint64Word(uint64(len(value.Elems)))
		elems, err := EncodeArguments(value.Elems)
		if err != nil {
			return nil, err
		}
		return append(lengthWord[:], elems...), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedValue, "cannot encode %s", value.Type.String())
	}
}

// encodeLengthPrefixedBytes encodes a byte payload as a length word followed by the data padded up to a word
// boundary.
func encodeLengthPrefixedBytes(data []byte) []byte {
	lengthWord := encodeUint64Word(uint64(len(data)))
	paddedLength := (len(data) + WordLength - 1) / WordLength * WordLength
	encoded := make([]byte, 0, WordLength+paddedLength)
	encoded = append(encoded, lengthWord[:]...)
	encoded = append(encoded, data...)
	return append(encoded, make([]byte, paddedLength-len(data))...)
}

// encodeUint64Word encodes an unsigned integer as a big-endian, right-aligned 32-byte word.
func encodeUint64Word(v uint64) [WordLength]byte {
	var word [WordLength]byte
	for i := 0; i < 8; i++ {
		word[WordLength-1-i] = byte(v >> (8 * i))
	}
	return word
}

// DecodeStaticWord decodes a single 32-byte word back into a value of the given statically sized type. It is the
// inverse of the static encoding and is primarily used to verify round-trip properties.
func DecodeStaticWord(t types.Type, word []byte) (types.Value, error) {
	if len(word) != WordLength {
		return types.Value{}, errors.Errorf("expected a %d-byte word, got %d bytes", WordLength, len(word))
	}
	value := types.Value{Type: t}

	switch {
	case t.UnsignedBits() > 0:
		value.Uint = new(uint256.Int).SetBytes(word)
	case t.SignedBits() > 0:
		payload := new(big.Int).SetBytes(word)
		// Values at or above 2^255 represent negatives in two's complement.
		if payload.Bit(255) == 1 {
			payload.Sub(payload, twosComplementModulus)
		}
		value.Int = payload
	case t.Kind == types.TypeAddress:
		copy(value.Addr[:], word[WordLength-len(value.Addr):])
	case t.Kind == types.TypeBool:
		value.Bool = word[WordLength-1] == 1
	case t.FixedBytesSize() > 0:
		value.Bytes = append([]byte(nil), word[:t.FixedBytesSize()]...)
	default:
		return types.Value{}, errors.Wrapf(ErrUnsupportedValue, "cannot decode %s", t.String())
	}

	return value, nil
}
