package rpc

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/onticket/chainindexer/internal/logger"
	pkgrpc "github.com/onticket/chainindexer/pkg/rpc"
)

// Compile-time check to ensure Client implements pkgrpc.Provider interface.
var _ pkgrpc.Provider = (*Client)(nil)

const (
	methodChainID     = "eth_chainId"
	methodBlockNumber = "eth_blockNumber"
	methodGetLogs     = "eth_getLogs"
)

// Client wraps the Ethereum RPC client as a pkgrpc.Provider.
// Every call runs under its own deadline; nothing is retried here.
type Client struct {
	eth     *ethclient.Client
	rpc     *rpc.Client
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates a new RPC client connected to the given endpoint.
func NewClient(ctx context.Context, endpoint string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	return NewClientFromRPC(rpcClient, timeout, log), nil
}

// NewClientFromRPC wraps an existing connection.
func NewClientFromRPC(rpcClient *rpc.Client, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		eth:     ethclient.NewClient(rpcClient),
		rpc:     rpcClient,
		timeout: timeout,
		log:     log,
	}
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
}

// ChainID returns the chain identifier reported by the node.
func (c *Client) ChainID(ctx context.Context) (int64, error) {
	var id *big.Int
	err := c.call(ctx, methodChainID, func(ctx context.Context) (err error) {
		id, err = c.eth.ChainID(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if !id.IsInt64() {
		return 0, fmt.Errorf("chain id %s does not fit into int64", id)
	}

	return id.Int64(), nil
}

// HeadBlock returns the current best block height.
func (c *Client) HeadBlock(ctx context.Context) (int64, error) {
	var head uint64
	err := c.call(ctx, methodBlockNumber, func(ctx context.Context) (err error) {
		head, err = c.eth.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if head > math.MaxInt64 {
		return 0, fmt.Errorf("head block %d does not fit into int64", head)
	}

	return int64(head), nil
}

// GetLogs returns the logs of addresses in [from, to] ordered by block number and log index.
// Entries that cannot be decoded at all are logged and dropped; entries lacking a
// transaction hash or block number are returned with those fields unset.
func (c *Client) GetLogs(ctx context.Context, addresses []common.Address, from, to int64) ([]pkgrpc.Log, error) {
	if from < 0 || to < from {
		return nil, fmt.Errorf("invalid block range [%d, %d]", from, to)
	}
	if len(addresses) == 0 {
		return nil, nil
	}

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(from),
		ToBlock:   big.NewInt(to),
		Addresses: addresses,
	}

	var raw []json.RawMessage
	err := c.call(ctx, methodGetLogs, func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &raw, methodGetLogs, toFilterArg(query))
	})
	if err != nil {
		return nil, err
	}

	logs := make([]pkgrpc.Log, 0, len(raw))
	for i, entry := range raw {
		l, err := decodeLog(entry)
		if err != nil {
			RPCDecodeErrorInc()
			c.log.Warnw("dropping undecodable log", "from", from, "to", to, "position", i, "error", err)
			continue
		}
		logs = append(logs, l)
	}

	slices.SortStableFunc(logs, func(a, b pkgrpc.Log) int {
		if c := cmp.Compare(a.Block(), b.Block()); c != 0 {
			return c
		}
		return cmp.Compare(a.LogIndex, b.LogIndex)
	})

	return logs, nil
}

// call runs fn under the client deadline and records metrics for method.
func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	RPCMethodInc(method)
	err := fn(ctx)
	RPCMethodDuration(method, time.Since(start))

	if err != nil {
		RPCMethodError(method, errorType(err))
		return fmt.Errorf("%s failed: %w", method, err)
	}

	return nil
}

// rpcLog mirrors the node's log object with every field optional.
type rpcLog struct {
	Address     *common.Address `json:"address"`
	Topics      []common.Hash   `json:"topics"`
	Data        *hexutil.Bytes  `json:"data"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
	TxHash      *common.Hash    `json:"transactionHash"`
	LogIndex    *hexutil.Uint64 `json:"logIndex"`
}

func decodeLog(raw json.RawMessage) (pkgrpc.Log, error) {
	var dec rpcLog
	if err := json.Unmarshal(raw, &dec); err != nil {
		return pkgrpc.Log{}, err
	}

	var l pkgrpc.Log
	if dec.Address != nil {
		l.Address = *dec.Address
	}
	l.Topics = dec.Topics
	if dec.Data != nil {
		l.Data = *dec.Data
	}
	if dec.BlockNumber != nil {
		n := uint64(*dec.BlockNumber)
		l.BlockNumber = &n
	}
	if dec.TxHash != nil {
		h := *dec.TxHash
		l.TxHash = &h
	}
	if dec.LogIndex != nil {
		if *dec.LogIndex > math.MaxUint32 {
			return pkgrpc.Log{}, fmt.Errorf("log index %d out of range", uint64(*dec.LogIndex))
		}
		l.LogIndex = uint32(*dec.LogIndex)
	}

	return l, nil
}

// toFilterArg converts ethereum.FilterQuery to the format expected by eth_getLogs.
func toFilterArg(q ethereum.FilterQuery) any {
	arg := map[string]any{
		"topics": q.Topics,
	}

	if q.BlockHash != nil {
		arg["blockHash"] = *q.BlockHash
	} else {
		if q.FromBlock != nil {
			arg["fromBlock"] = toBlockNumArg(q.FromBlock.Uint64())
		}
		if q.ToBlock != nil {
			arg["toBlock"] = toBlockNumArg(q.ToBlock.Uint64())
		}
	}

	if len(q.Addresses) > 0 {
		if len(q.Addresses) == 1 {
			arg["address"] = q.Addresses[0]
		} else {
			arg["address"] = q.Addresses
		}
	}

	return arg
}

// toBlockNumArg converts a block number to hex format.
func toBlockNumArg(blockNum uint64) string {
	return hexutil.EncodeUint64(blockNum)
}

func errorType(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if tooMany, _ := IsTooManyResultsError(err); tooMany {
		return "too_many_results"
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return "rpc"
	}
	return "transport"
}
