package rpc

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionArgs is the transaction payload shape submitted to eth_sendTransaction and eth_call. Hex values are
// rendered with a 0x prefix, lowercase, without leading zeros except for "0x0".
type TransactionArgs struct {
	// From is the sender account.
	From common.Address `json:"from"`

	// To is the call target. Nil for contract creation transactions.
	To *common.Address `json:"to,omitempty"`

	// Data is the calldata, or init code for contract creation.
	Data hexutil.Bytes `json:"data"`

	// Value is the amount of wei sent along with the transaction.
	Value *hexutil.Big `json:"value,omitempty"`

	// Nonce is the sender's transaction sequence number. Omitted for simulated calls.
	Nonce *hexutil.Uint64 `json:"nonce,omitempty"`

	// Gas is the gas limit for the transaction. Omitted for simulated calls.
	Gas *hexutil.Uint64 `json:"gas,omitempty"`
}

// Receipt is the post-execution record of a transaction. Only the fields the fuzzer consumes are parsed; all
// others are ignored.
type Receipt struct {
	// ContractAddress is the address of the created contract for deployment transactions, nil otherwise.
	ContractAddress *common.Address `json:"contractAddress"`

	// Status is the execution success bit, "0x1"/"0x0". Some nodes return bare "1"/"0".
	Status string `json:"status"`

	// GasUsed is the hex-encoded amount of gas the transaction consumed.
	GasUsed string `json:"gasUsed"`
}

// Succeeded reports whether the receipt indicates successful execution.
func (r *Receipt) Succeeded() bool {
	return r.Status == "0x1" || r.Status == "1"
}

// GasUsedAmount parses the receipt's gas usage, returning zero when the field is absent or malformed.
func (r *Receipt) GasUsedAmount() uint64 {
	gas, err := strconv.ParseUint(strings.TrimPrefix(r.GasUsed, "0x"), 16, 64)
	if err != nil {
		return 0
	}
	return gas
}
