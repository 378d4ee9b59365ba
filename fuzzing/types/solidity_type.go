package types

import (
	"fmt"
	"strings"
)

// TypeKind enumerates the Solidity parameter types the fuzzer knows how to generate and encode values for.
type TypeKind uint8

const (
	TypeUint8 TypeKind = iota
	TypeUint16
	TypeUint32
	TypeUint64
	TypeUint128
	TypeUint256
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeInt128
	TypeInt256
	TypeAddress
	TypeBool
	TypeBytes1
	TypeBytes2
	TypeBytes4
	TypeBytes8
	TypeBytes16
	TypeBytes32
	TypeString
	TypeBytes
	TypeArray

	// TypeUnsupported is a placeholder for type tokens the parser does not recognize. Downstream logic treats
	// values of this kind as "skip this iteration".
	TypeUnsupported
)

// Type describes a Solidity parameter type as a tagged variant. Array types carry their element type in Elem.
type Type struct {
	// Kind is the variant tag of this type.
	Kind TypeKind

	// Elem is the element type for TypeArray kinds, nil otherwise.
	Elem *Type

	// Raw is the original source token for TypeUnsupported kinds, used for diagnostics.
	Raw string
}

// scalarTypesByToken maps exact Solidity type tokens to their kind. Bare uint/int alias their 256-bit forms.
var scalarTypesByToken = map[string]TypeKind{
	"uint8":   TypeUint8,
	"uint16":  TypeUint16,
	"uint32":  TypeUint32,
	"uint64":  TypeUint64,
	"uint128": TypeUint128,
	"uint256": TypeUint256,
	"uint":    TypeUint256,
	"int8":    TypeInt8,
	"int16":   TypeInt16,
	"int32":   TypeInt32,
	"int64":   TypeInt64,
	"int128":  TypeInt128,
	"int256":  TypeInt256,
	"int":     TypeInt256,
	"address": TypeAddress,
	"bool":    TypeBool,
	"string":  TypeString,
	"bytes":   TypeBytes,
	"bytes1":  TypeBytes1,
	"bytes2":  TypeBytes2,
	"bytes4":  TypeBytes4,
	"bytes8":  TypeBytes8,
	"bytes16": TypeBytes16,
	"bytes32": TypeBytes32,
}

// ParseType resolves a Solidity type token into a Type. Tokens suffixed with "[]" resolve to an array of the
// recursively parsed element type. Unknown tokens map to the TypeUnsupported placeholder.
func ParseType(token string) Type {
	if elemToken, ok := strings.CutSuffix(token, "[]"); ok {
		elem := ParseType(elemToken)
		return Type{Kind: TypeArray, Elem: &elem}
	}
	if kind, ok := scalarTypesByToken[token]; ok {
		return Type{Kind: kind}
	}
	return Type{Kind: TypeUnsupported, Raw: token}
}

// String returns the canonical Solidity name of the type, as used in method signature strings. Array types render
// their element type recursively, e.g. "uint8[]".
func (t Type) String() string {
	switch t.Kind {
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeUint128:
		return "uint128"
	case TypeUint256:
		return "uint256"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeInt128:
		return "int128"
	case TypeInt256:
		return "int256"
	case TypeAddress:
		return "address"
	case TypeBool:
		return "bool"
	case TypeBytes1:
		return "bytes1"
	case TypeBytes2:
		return "bytes2"
	case TypeBytes4:
		return "bytes4"
	case TypeBytes8:
		return "bytes8"
	case TypeBytes16:
		return "bytes16"
	case TypeBytes32:
		return "bytes32"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeArray:
		return t.Elem.String() + "[]"
	default:
		return fmt.Sprintf("unsupported(%s)", t.Raw)
	}
}

// IsUnsupported reports whether the type (or, for arrays, its element type) is the unsupported placeholder.
func (t Type) IsUnsupported() bool {
	if t.Kind == TypeArray {
		return t.Elem.IsUnsupported()
	}
	return t.Kind == TypeUnsupported
}

// UnsignedBits returns the bit width for unsigned integer kinds, or zero for any other kind.
func (t Type) UnsignedBits() int {
	switch t.Kind {
	case TypeUint8:
		return 8
	case TypeUint16:
		return 16
	case TypeUint32:
		return 32
	case TypeUint64:
		return 64
	case TypeUint128:
		return 128
	case TypeUint256:
		return 256
	}
	return 0
}

// SignedBits returns the bit width for signed integer kinds, or zero for any other kind.
func (t Type) SignedBits() int {
	switch t.Kind {
	case TypeInt8:
		return 8
	case TypeInt16:
		return 16
	case TypeInt32:
		return 32
	case TypeInt64:
		return 64
	case TypeInt128:
		return 128
	case TypeInt256:
		return 256
	}
	return 0
}

// FixedBytesSize returns the byte width for fixed-width byte string kinds, or zero for any other kind.
func (t Type) FixedBytesSize() int {
	switch t.Kind {
	case TypeBytes1:
		return 1
	case TypeBytes2:
		return 2
	case TypeBytes4:
		return 4
	case TypeBytes8:
		return 8
	case TypeBytes16:
		return 16
	case TypeBytes32:
		return 32
	}
	return 0
}

// IsDynamic reports whether the type uses the dynamic head/tail ABI encoding.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case TypeString, TypeBytes, TypeArray:
		return true
	}
	return false
}
