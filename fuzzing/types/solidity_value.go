package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Value is a concrete generated value mirroring the Type variant space. Exactly one payload field is populated,
// selected by Type.Kind. Unsigned integers of any width are carried in Uint, signed integers in Int (full range,
// so no width is ever truncated), addresses in Addr, fixed and dynamic byte strings in Bytes.
type Value struct {
	// Type tags which payload field below is meaningful.
	Type Type

	// Uint carries all unsigned integer payloads (widths 8 through 256).
	Uint *uint256.Int

	// Int carries all signed integer payloads (widths 8 through 256).
	Int *big.Int

	// Addr carries address payloads.
	Addr common.Address

	// Bool carries boolean payloads.
	Bool bool

	// Bytes carries fixed-width byte strings (length matching the type width) and dynamic byte vectors.
	Bytes []byte

	// Str carries dynamic string payloads.
	Str string

	// Elems carries array element payloads.
	Elems []Value
}

// IsUnsupported reports whether this value is the unsupported placeholder, either directly or through any array
// element.
func (v Value) IsUnsupported() bool {
	if v.Type.Kind == TypeArray {
		for _, elem := range v.Elems {
			if elem.IsUnsupported() {
				return true
			}
		}
		return v.Type.IsUnsupported()
	}
	return v.Type.Kind == TypeUnsupported
}

// String returns a compact, human-readable rendering of the value for failure reports. Long strings, byte vectors,
// and arrays are truncated so a single report line stays readable.
func (v Value) String() string {
	switch v.Type.Kind {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64, TypeUint128, TypeUint256:
		return v.Uint.Dec()
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeInt128, TypeInt256:
		return v.Int.String()
	case TypeAddress:
		addr := strings.ToLower(v.Addr.Hex())
		return addr[:5] + "..." + addr[len(addr)-2:]
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	case TypeString:
		if len(v.Str) > 30 {
			return fmt.Sprintf("%q...", v.Str[:27])
		}
		return fmt.Sprintf("%q", v.Str)
	case TypeBytes, TypeBytes16, TypeBytes32:
		if len(v.Bytes) > 8 {
			return "0x" + hex.EncodeToString(v.Bytes[:8]) + "..."
		}
		return "0x" + hex.EncodeToString(v.Bytes)
	case TypeBytes1, TypeBytes2, TypeBytes4, TypeBytes8:
		return "0x" + hex.EncodeToString(v.Bytes)
	case TypeArray:
		if len(v.Elems) > 3 {
			return fmt.Sprintf("[%d items]", len(v.Elems))
		}
		items := make([]string, len(v.Elems))
		for i, elem := range v.Elems {
			items[i] = elem.String()
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return "<unsupported>"
	}
}

// FormatValues renders a comma-separated compact display of the provided values, used when reporting a failing
// invocation.
func FormatValues(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
