// Package abiutils implements the contract ABI calling convention used by the fuzzer: canonical method signatures,
// 4-byte selectors, and encoding of generated argument values into 32-byte-aligned calldata, including the two-phase
// head/tail layout for dynamic types.
package abiutils

import (
	"strings"

	"github.com/ExtropyIO/Fuzzhead/fuzzing/types"
	"golang.org/x/crypto/sha3"
)

// SelectorLength is the length of a method selector in bytes.
const SelectorLength = 4

// Signature builds the canonical signature string for a method, e.g. "transfer(address,uint256)". The canonical
// type names are derived from the declared parameter types, so the signature matches the contract's dispatch table
// even when the generated payload width differs from the declared width.
func Signature(name string, paramTypes []types.Type) string {
	typeNames := make([]string, len(paramTypes))
	for i, paramType := range paramTypes {
		typeNames[i] = paramType.String()
	}
	return name + "(" + strings.Join(typeNames, ",") + ")"
}

// Selector computes the 4-byte method selector: the leading bytes of the Keccak-256 hash of the canonical
// signature string.
func Selector(signature string) [SelectorLength]byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	var selector [SelectorLength]byte
	copy(selector[:], hash.Sum(nil)[:SelectorLength])
	return selector
}

// PackCall builds complete calldata for a method invocation: the selector of the declared-type signature followed
// by the ABI-encoded argument values.
func PackCall(name string, paramTypes []types.Type, values []types.Value) ([]byte, error) {
	selector := Selector(Signature(name, paramTypes))
	encodedArgs, err := EncodeArguments(values)
	if err != nil {
		return nil, err
	}
	return append(selector[:], encodedArgs...), nil
}
