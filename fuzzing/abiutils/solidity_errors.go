package abiutils

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// An enum is defined below providing all `Panic(uint)` error codes returned in return data when the VM encounters
// an error in some cases.
// Reference: https://docs.soliditylang.org/en/latest/control-structures.html#panic-via-assert-and-error-via-require
const (
	PanicCodeCompilerInserted              = 0x00
	PanicCodeAssertFailed                  = 0x01
	PanicCodeArithmeticUnderOverflow       = 0x11
	PanicCodeDivideByZero                  = 0x12
	PanicCodeEnumTypeConversionOutOfBounds = 0x21
	PanicCodeIncorrectStorageAccess        = 0x22
	PanicCodePopEmptyArray                 = 0x31
	PanicCodeOutOfBoundsArrayAccess        = 0x32
	PanicCodeAllocateTooMuchMemory         = 0x41
	PanicCodeCallUninitializedVariable     = 0x51
)

// errorReturnDataAbi is the method definition for the built-in `Error(string)` revert encoding.
var errorReturnDataAbi abi.Method

// panicReturnDataAbi is the method definition for the built-in `Panic(uint256)` revert encoding.
var panicReturnDataAbi abi.Method

func init() {
	stringType, _ := abi.NewType("string", "", nil)
	errorReturnDataAbi = abi.NewMethod("Error", "Error", abi.Function, "", false, false, []abi.Argument{
		{Name: "", Type: stringType, Indexed: false},
	}, abi.Arguments{})

	uintType, _ := abi.NewType("uint256", "", nil)
	panicReturnDataAbi = abi.NewMethod("Panic", "Panic", abi.Function, "", false, false, []abi.Argument{
		{Name: "", Type: uintType, Indexed: false},
	}, abi.Arguments{})
}

// GetSolidityRevertErrorString obtains the revert message from `Error(string)` return data, if the data carries
// one. Returns nil when the data is not an Error encoding.
func GetSolidityRevertErrorString(returnData []byte) *string {
	// Verify the return data fits the selector plus additional data and starts with the Error selector.
	if len(returnData) > SelectorLength && bytes.Equal(returnData[:SelectorLength], errorReturnDataAbi.ID) {
		values, err := errorReturnDataAbi.Inputs.Unpack(returnData[SelectorLength:])
		if err == nil && len(values) > 0 {
			errorMessage := values[0].(string)
			return &errorMessage
		}
	}
	return nil
}

// GetSolidityPanicCode obtains a panic code from `Panic(uint256)` return data, if the data carries one. Returns nil
// when the data is not a Panic encoding.
func GetSolidityPanicCode(returnData []byte) *big.Int {
	// Verify the return data fits exactly the selector + uint256 and starts with the Panic selector.
	if len(returnData) == SelectorLength+WordLength && bytes.Equal(returnData[:SelectorLength], panicReturnDataAbi.ID) {
		values, err := panicReturnDataAbi.Inputs.Unpack(returnData[SelectorLength:])
		if err == nil && len(values) > 0 {
			return values[0].(*big.Int)
		}
	}
	return nil
}

// DescribePanicCode returns a human-readable description of a Solidity panic code, or an empty string for codes
// with no known description.
func DescribePanicCode(code uint64) string {
	switch code {
	case PanicCodeCompilerInserted:
		return "panic: compiler inserted panic"
	case PanicCodeAssertFailed:
		return "panic: assertion failed"
	case PanicCodeArithmeticUnderOverflow:
		return "panic: arithmetic underflow/overflow"
	case PanicCodeDivideByZero:
		return "panic: division or modulo by zero"
	case PanicCodeEnumTypeConversionOutOfBounds:
		return "panic: conversion into non-existent enum type"
	case PanicCodeIncorrectStorageAccess:
		return "panic: incorrectly encoded storage byte array accessed"
	case PanicCodePopEmptyArray:
		return "panic: pop() called on empty array"
	case PanicCodeOutOfBoundsArrayAccess:
		return "panic: out-of-bounds array access"
	case PanicCodeAllocateTooMuchMemory:
		return "panic: allocated too much memory"
	case PanicCodeCallUninitializedVariable:
		return "panic: called an uninitialized internal function variable"
	}
	return ""
}
