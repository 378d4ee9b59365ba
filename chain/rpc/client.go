// Package rpc provides a typed JSON-RPC 2.0 client for the node methods the fuzzer depends on. The wire protocol
// is delegated to go-ethereum's rpc package; this layer adds typed wrappers and structured error translation.
package rpc

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Client issues JSON-RPC requests against a single node endpoint and returns parsed results or structured errors.
type Client struct {
	// url is the node endpoint locator.
	url string

	// inner is the underlying go-ethereum RPC client handling the HTTP transport and request envelopes.
	inner *gethrpc.Client
}

// DialContext connects a client to the given JSON-RPC endpoint URL.
func DialContext(ctx context.Context, url string) (*Client, error) {
	inner, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to RPC endpoint %s", url)
	}
	return &Client{url: url, inner: inner}, nil
}

// URL returns the endpoint locator this client was dialed with.
func (c *Client) URL() string {
	return c.url
}

// Close shuts down the underlying transport.
func (c *Client) Close() {
	c.inner.Close()
}

// BalanceAt queries the balance of an account at the given block tag.
func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockTag string) (*big.Int, error) {
	var result hexutil.Big
	if err := c.call(ctx, &result, "eth_getBalance", account, blockTag); err != nil {
		return nil, err
	}
	return result.ToInt(), nil
}

// PendingNonceAt queries the number of transactions known for an account at the pending block, which is the next
// usable nonce.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var result hexutil.Uint64
	if err := c.call(ctx, &result, "eth_getTransactionCount", account, "pending"); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// SendTransaction submits a state-modifying transaction and returns its hash.
func (c *Client) SendTransaction(ctx context.Context, tx *TransactionArgs) (common.Hash, error) {
	var result common.Hash
	if err := c.call(ctx, &result, "eth_sendTransaction", tx); err != nil {
		return common.Hash{}, err
	}
	return result, nil
}

// TransactionReceipt queries the receipt of a transaction. A (nil, nil) return means the transaction is not yet
// mined, which is not an error.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	var result *Receipt
	if err := c.call(ctx, &result, "eth_getTransactionReceipt", txHash); err != nil {
		return nil, err
	}
	return result, nil
}

// Call simulates a call at the given block tag without creating a transaction, returning the raw return data.
// Reverts surface as an *Error whose Data may carry the revert return data.
func (c *Client) Call(ctx context.Context, tx *TransactionArgs, blockTag string) (hexutil.Bytes, error) {
	var result hexutil.Bytes
	if err := c.call(ctx, &result, "eth_call", tx, blockTag); err != nil {
		return nil, err
	}
	return result, nil
}

// call issues a request through the underlying client and translates failures into structured *Error values.
func (c *Client) call(ctx context.Context, result any, method string, params ...any) error {
	err := c.inner.CallContext(ctx, result, method, params...)
	if err == nil {
		return nil
	}

	translated := &Error{Method: method, Message: err.Error()}
	if rpcErr, ok := err.(gethrpc.Error); ok {
		translated.Code = rpcErr.ErrorCode()
	}
	if dataErr, ok := err.(gethrpc.DataError); ok {
		if hexData, ok := dataErr.ErrorData().(string); ok && strings.HasPrefix(hexData, "0x") {
			if decoded, decodeErr := hexutil.Decode(hexData); decodeErr == nil {
				translated.Data = decoded
			}
		}
	}
	return translated
}
