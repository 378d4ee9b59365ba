package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// CompiledContract describes a single deployable compilation artifact: the contract's init bytecode and its
// structured ABI record, as returned by the compiler toolchain.
type CompiledContract struct {
	// Name is the contract identifier within its source unit.
	Name string

	// SourcePath is the path of the source file the contract was compiled from.
	SourcePath string

	// InitBytecode is the deployment bytecode.
	InitBytecode []byte

	// Abi is the parsed contract ABI, consumed for constructor argument packing.
	Abi abi.ABI

	// AbiDefinition is the raw ABI JSON as emitted by the compiler, kept so artifacts can be persisted and
	// re-parsed.
	AbiDefinition json.RawMessage
}

// ParseABIFromInterface parses an ABI definition that may be provided either as a JSON string or as an
// already-decoded JSON structure, as the various compiler toolchains emit both forms.
func ParseABIFromInterface(i any) (*abi.ABI, json.RawMessage, error) {
	var raw json.RawMessage
	switch v := i.(type) {
	case string:
		raw = json.RawMessage(v)
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "could not re-encode ABI definition")
		}
		raw = encoded
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, errors.WithMessage(err, "could not parse ABI definition")
	}
	return &parsed, raw, nil
}

// ParseBytecodeFromHex decodes hex-encoded deployment bytecode, tolerating an optional 0x prefix.
func ParseBytecodeFromHex(bytecodeHex string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(bytecodeHex, "0x"))
	if err != nil {
		return nil, errors.WithMessage(err, "could not decode contract bytecode")
	}
	return decoded, nil
}
