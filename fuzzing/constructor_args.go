package fuzzing

import (
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// ConstructorArgProvider supplies concrete constructor argument values for a contract deployment. The fuzzer is
// agnostic to where the values come from: the default implementation reads them from the project configuration,
// and an interactive prompting implementation can be swapped in behind the same interface.
type ConstructorArgProvider interface {
	// ConstructorArgs resolves a value for each constructor input of the named contract, in declaration order,
	// in a form acceptable to go-ethereum's ABI argument packing.
	ConstructorArgs(contractName string, inputs abi.Arguments) ([]any, error)
}

// ConfigConstructorArgProvider resolves constructor arguments from the project configuration's constructorArgs
// mapping of contract name to parameter name to value.
type ConfigConstructorArgProvider struct {
	// Args maps contract names to their configured parameter values.
	Args map[string]map[string]any
}

// ConstructorArgs resolves each constructor input from the configured mapping, converting the JSON-typed values
// into the Go representations the ABI packer expects.
func (p *ConfigConstructorArgProvider) ConstructorArgs(contractName string, inputs abi.Arguments) ([]any, error) {
	configured := p.Args[contractName]

	values := make([]any, 0, len(inputs))
	for _, input := range inputs {
		raw, ok := configured[input.Name]
		if !ok {
			return nil, errors.Errorf(
				"missing constructor argument %q for contract %s; provide it under constructorArgs in the project config",
				input.Name, contractName)
		}

		converted, err := convertConstructorArg(raw, input.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "constructor argument %q for contract %s", input.Name, contractName)
		}
		values = append(values, converted)
	}
	return values, nil
}

// convertConstructorArg converts a configuration value (as decoded from JSON: string, float64, or bool) into the
// exact Go type go-ethereum's ABI packing expects for the given parameter type.
func convertConstructorArg(raw any, t abi.Type) (any, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		parsed, err := parseBigInt(raw)
		if err != nil {
			return nil, err
		}
		// Widths of 64 bits or less pack from native integer types; wider types pack from *big.Int.
		if t.Size > 64 {
			return parsed, nil
		}
		value := reflect.New(t.GetType()).Elem()
		if t.T == abi.UintTy {
			value.SetUint(parsed.Uint64())
		} else {
			value.SetInt(parsed.Int64())
		}
		return value.Interface(), nil

	case abi.AddressTy:
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expected an address string, got %T", raw)
		}
		if !common.IsHexAddress(s) {
			return nil, errors.Errorf("invalid address format: %s", s)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return nil, errors.Errorf("expected a boolean, got %T", raw)

	case abi.StringTy:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, errors.Errorf("expected a string, got %T", raw)

	case abi.BytesTy:
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expected a hex string, got %T", raw)
		}
		decoded, err := hexutil.Decode(s)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid hex value")
		}
		return decoded, nil

	case abi.FixedBytesTy:
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expected a hex string, got %T", raw)
		}
		decoded, err := hexutil.Decode(s)
		if err != nil {
			return nil, errors.WithMessage(err, "invalid hex value")
		}
		if len(decoded) != t.Size {
			return nil, errors.Errorf("expected %d bytes, got %d", t.Size, len(decoded))
		}
		value := reflect.New(t.GetType()).Elem()
		reflect.Copy(value, reflect.ValueOf(decoded))
		return value.Interface(), nil

	default:
		return nil, errors.Errorf("unsupported constructor parameter type: %s", t.String())
	}
}

// parseBigInt parses an integer from its JSON representation: a decimal (or 0x-prefixed hex) string, or a number.
func parseBigInt(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case string:
		base := 10
		digits := v
		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "-0x") {
			base = 16
			digits = strings.Replace(v, "0x", "", 1)
		}
		parsed, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return nil, errors.Errorf("invalid integer value: %s", v)
		}
		return parsed, nil
	case float64:
		return big.NewInt(int64(v)), nil
	default:
		return nil, errors.Errorf("expected an integer value, got %T", raw)
	}
}
