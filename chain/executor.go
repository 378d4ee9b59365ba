// Package chain implements the execution engine for fuzzing sessions: it deploys contracts to a forked node,
// submits fuzzed method calls as transactions, polls for receipts, tracks per-sender nonces, and diagnoses
// reverted executions.
package chain

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ExtropyIO/Fuzzhead/chain/rpc"
	"github.com/ExtropyIO/Fuzzhead/fuzzing/abiutils"
	"github.com/ExtropyIO/Fuzzhead/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

const (
	// receiptPollInterval is the delay between transaction receipt queries.
	receiptPollInterval = 100 * time.Millisecond

	// receiptPollAttempts is the number of receipt queries made before a transaction is considered not mined.
	receiptPollAttempts = 100

	// transactionGasLimit is the fixed gas limit attached to every transaction (16M, enough for most contracts).
	transactionGasLimit = hexutil.Uint64(0x1000000)
)

// unknownRevertReason is reported when a revert reason could not be extracted.
const unknownRevertReason = "Unknown revert reason"

// DefaultTestAccounts are the pre-funded accounts of well-known local development chains, probed at engine
// construction to discover usable senders.
var DefaultTestAccounts = []common.Address{
	common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
	common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"),
	common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"),
}

// ExecutionResult describes the outcome of a single fuzzed method invocation.
type ExecutionResult struct {
	// Success indicates the transaction was mined with a success status.
	Success bool

	// GasUsed is the amount of gas the transaction consumed, when a receipt was obtained.
	GasUsed uint64

	// Reason carries the cleaned revert reason or transport failure message for unsuccessful invocations.
	Reason string
}

// ForkExecutor owns the mutable state of a fuzzing session against a forked node: the usable sender accounts,
// their nonces, and the addresses of deployed contracts. All operations are strictly sequential; no two
// transactions are ever in flight simultaneously, since nonces are tracked client-side.
type ForkExecutor struct {
	// client is the JSON-RPC client for the node endpoint.
	client *rpc.Client

	// logger describes the executor's sub-logger.
	logger *logging.Logger

	// accounts is the ordered list of usable sender identities, size >= 1.
	accounts []common.Address

	// currentSender indexes into accounts, selecting the sender for the next transaction.
	currentSender int

	// nonces maps each account to its next unused transaction sequence number.
	nonces map[common.Address]uint64

	// deployed maps contract names to their deployed addresses. A name is registered only after a success
	// receipt was observed for its deployment transaction.
	deployed map[string]common.Address
}

// NewForkExecutor connects to the node at rpcURL and discovers usable sender accounts by probing the well-known
// test accounts with balance queries. Accounts that respond are retained; if none respond, the first candidate is
// retained so the engine always has a sender. Each retained account's nonce is seeded from the chain's pending
// transaction count.
func NewForkExecutor(ctx context.Context, rpcURL string, logger *logging.Logger) (*ForkExecutor, error) {
	logger = logger.NewSubLogger("module", "chain")
	logger.Debug("Connecting to forked node at: ", rpcURL)

	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	var accounts []common.Address
	for _, candidate := range DefaultTestAccounts {
		if _, err := client.BalanceAt(ctx, candidate, "latest"); err != nil {
			logger.Warn("Account ", candidate.Hex(), " not found, skipping")
			continue
		}
		accounts = append(accounts, candidate)
	}
	if len(accounts) == 0 {
		accounts = append(accounts, DefaultTestAccounts[0])
	}
	logger.Debug("Found ", len(accounts), " usable accounts")

	nonces := make(map[common.Address]uint64, len(accounts))
	for _, account := range accounts {
		nonce, err := client.PendingNonceAt(ctx, account)
		if err != nil {
			nonce = 0
		}
		nonces[account] = nonce
	}

	return &ForkExecutor{
		client:   client,
		logger:   logger,
		accounts: accounts,
		nonces:   nonces,
		deployed: make(map[string]common.Address),
	}, nil
}

// Close releases the underlying RPC connection.
func (e *ForkExecutor) Close() {
	e.client.Close()
}

// RPCURL returns the endpoint the executor is connected to.
func (e *ForkExecutor) RPCURL() string {
	return e.client.URL()
}

// Accounts returns the ordered usable sender accounts.
func (e *ForkExecutor) Accounts() []common.Address {
	return e.accounts
}

// CurrentSender returns the account that will sign the next transaction.
func (e *ForkExecutor) CurrentSender() common.Address {
	return e.accounts[e.currentSender]
}

// SetSender selects the sender for subsequent transactions by index into Accounts. An out-of-range index is
// rejected with an explicit error and leaves the current sender unchanged.
func (e *ForkExecutor) SetSender(index int) error {
	if index < 0 || index >= len(e.accounts) {
		return errors.Errorf("sender index %d out of range [0, %d)", index, len(e.accounts))
	}
	e.currentSender = index
	return nil
}

// Nonce returns the tracked next unused nonce for the given account.
func (e *ForkExecutor) Nonce(account common.Address) uint64 {
	return e.nonces[account]
}

// DeployedContract resolves the deployed address registered for a contract name.
func (e *ForkExecutor) DeployedContract(name string) (common.Address, bool) {
	address, ok := e.deployed[name]
	return address, ok
}

// DeployedContracts returns a copy of the contract name to address registry.
func (e *ForkExecutor) DeployedContracts() map[string]common.Address {
	return maps.Clone(e.deployed)
}

// DeployContract submits a contract creation transaction carrying the given init bytecode concatenated with any
// encoded constructor arguments, waits for it to be mined, and registers the deployed address under the contract
// name. Reverted deployments are diagnosed via a simulated call and reported as errors.
func (e *ForkExecutor) DeployContract(ctx context.Context, contractName string, bytecode []byte, constructorArgs []byte) (common.Address, error) {
	e.logger.Debug("Deploying contract: ", contractName)

	deploymentBytecode := make([]byte, 0, len(bytecode)+len(constructorArgs))
	deploymentBytecode = append(deploymentBytecode, bytecode...)
	deploymentBytecode = append(deploymentBytecode, constructorArgs...)

	sender := e.CurrentSender()
	nonce := hexutil.Uint64(e.nonces[sender])
	gas := transactionGasLimit
	txHash, err := e.client.SendTransaction(ctx, &rpc.TransactionArgs{
		From:  sender,
		Data:  deploymentBytecode,
		Value: (*hexutil.Big)(new(big.Int)),
		Nonce: &nonce,
		Gas:   &gas,
	})
	if err != nil {
		return common.Address{}, err
	}

	receipt, err := e.waitForTransaction(ctx, txHash)
	if err != nil {
		return common.Address{}, err
	}

	// The transaction was mined, so its nonce was consumed even if the deployment reverted.
	e.nonces[sender]++

	if !receipt.Succeeded() {
		reason := e.deploymentRevertReason(ctx, sender, deploymentBytecode)
		return common.Address{}, errors.Errorf(
			"contract deployment failed: transaction reverted (status: %s)\nRevert reason: %s", receipt.Status, reason)
	}

	if receipt.ContractAddress == nil {
		return common.Address{}, errors.New("no contract address in receipt - deployment may have failed")
	}

	e.logger.Debug("Contract ", contractName, " deployed at: ", receipt.ContractAddress.Hex())
	e.deployed[contractName] = *receipt.ContractAddress
	return *receipt.ContractAddress, nil
}

// CallMethod invokes a method on a previously deployed contract with pre-encoded arguments, submitted as a
// transaction from the current sender. The outcome classifies as success (mined with status 1), revert (mined
// with failure status, with a reason recovered via simulation), or transport failure. Mined transactions consume
// the sender's nonce regardless of status; transport failures do not.
func (e *ForkExecutor) CallMethod(ctx context.Context, contractName string, methodSignature string, encodedArgs []byte) (*ExecutionResult, error) {
	contractAddress, ok := e.deployed[contractName]
	if !ok {
		return nil, errors.Errorf("contract %s not deployed", contractName)
	}

	e.logger.Debug("Calling method ", methodSignature, " on contract ", contractName, " at ", contractAddress.Hex())

	selector := abiutils.Selector(methodSignature)
	callData := append(selector[:], encodedArgs...)

	sender := e.CurrentSender()
	nonce := hexutil.Uint64(e.nonces[sender])
	gas := transactionGasLimit
	txHash, err := e.client.SendTransaction(ctx, &rpc.TransactionArgs{
		From:  sender,
		To:    &contractAddress,
		Data:  callData,
		Value: (*hexutil.Big)(new(big.Int)),
		Nonce: &nonce,
		Gas:   &gas,
	})
	if err != nil {
		return &ExecutionResult{Success: false, Reason: "Transaction failed: " + err.Error()}, nil
	}

	receipt, err := e.waitForTransaction(ctx, txHash)
	if err != nil {
		return &ExecutionResult{Success: false, Reason: "Failed to get receipt: " + err.Error()}, nil
	}

	// The transaction was mined, so its nonce was consumed even if execution reverted.
	e.nonces[sender]++

	if receipt.Succeeded() {
		return &ExecutionResult{Success: true, GasUsed: receipt.GasUsedAmount()}, nil
	}

	reason := e.revertReason(ctx, sender, &contractAddress, callData)
	return &ExecutionResult{Success: false, GasUsed: receipt.GasUsedAmount(), Reason: reason}, nil
}

// waitForTransaction polls for a transaction receipt every 100 ms, giving up after 100 attempts. A null receipt
// response means the transaction is not yet mined.
func (e *ForkExecutor) waitForTransaction(ctx context.Context, txHash common.Hash) (*rpc.Receipt, error) {
	for attempt := 0; attempt < receiptPollAttempts; attempt++ {
		receipt, err := e.client.TransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
	return nil, errors.Errorf("Transaction not mined after %d attempts (10 seconds)", receiptPollAttempts)
}

// revertReason re-simulates a failed call via eth_call to recover a human-readable revert reason. Extraction is
// best-effort: structured Error(string)/Panic(uint256) return data is decoded when the node attaches it, otherwise
// the node's error message is normalized.
func (e *ForkExecutor) revertReason(ctx context.Context, sender common.Address, to *common.Address, callData []byte) string {
	_, err := e.client.Call(ctx, &rpc.TransactionArgs{From: sender, To: to, Data: callData}, "latest")
	if err == nil {
		// The simulation passed even though the transaction reverted; nothing further to extract.
		return unknownRevertReason
	}
	return reasonFromCallError(err)
}

// deploymentRevertReason simulates a failed deployment's init code via eth_call to recover a revert reason.
func (e *ForkExecutor) deploymentRevertReason(ctx context.Context, sender common.Address, deploymentBytecode []byte) string {
	_, err := e.client.Call(ctx, &rpc.TransactionArgs{From: sender, Data: deploymentBytecode}, "latest")
	if err == nil {
		return unknownRevertReason
	}
	return reasonFromCallError(err)
}

// reasonFromCallError extracts the most specific revert reason available from a failed eth_call: decoded revert
// return data when present, else the normalized error message.
func reasonFromCallError(err error) string {
	if rpcErr, ok := err.(*rpc.Error); ok && len(rpcErr.Data) > 0 {
		if message := abiutils.GetSolidityRevertErrorString(rpcErr.Data); message != nil {
			return *message
		}
		if code := abiutils.GetSolidityPanicCode(rpcErr.Data); code != nil {
			if described := abiutils.DescribePanicCode(code.Uint64()); described != "" {
				return described
			}
		}
	}
	if reason := NormalizeRevertReason(err.Error()); reason != "" {
		return reason
	}
	return unknownRevertReason
}

// NormalizeRevertReason flattens newlines to spaces, strips a redundant "execution reverted:" or "RPC error:"
// prefix, and trims surrounding whitespace.
func NormalizeRevertReason(reason string) string {
	flattened := strings.ReplaceAll(reason, "\n", " ")
	flattened = strings.ReplaceAll(flattened, "\r", " ")

	if _, after, found := strings.Cut(flattened, "execution reverted:"); found {
		flattened = after
	} else if _, after, found := strings.Cut(flattened, "RPC error:"); found {
		flattened = after
	}
	return strings.TrimSpace(flattened)
}
