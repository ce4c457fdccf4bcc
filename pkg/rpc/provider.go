package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Provider is a read-only view of a chain node.
// Implementations do not retry; every failure is returned to the caller.
type Provider interface {
	// ChainID returns the chain identifier reported by the node.
	ChainID(ctx context.Context) (int64, error)

	// HeadBlock returns the current best block height.
	HeadBlock(ctx context.Context) (int64, error)

	// GetLogs returns all logs emitted by addresses within the inclusive range [from, to],
	// ordered by block number and log index.
	GetLogs(ctx context.Context, addresses []common.Address, from, to int64) ([]Log, error)
}

// Log is a raw log as reported by the node.
// BlockNumber and TxHash are nil when the transport omitted them.
type Log struct {
	Address     common.Address
	Topics      []common.Hash
	Data        []byte
	BlockNumber *uint64
	TxHash      *common.Hash
	LogIndex    uint32
}

// Block returns the block number, or zero when it is unknown.
func (l Log) Block() uint64 {
	if l.BlockNumber == nil {
		return 0
	}
	return *l.BlockNumber
}

// Hash returns the transaction hash, or the zero hash when it is unknown.
func (l Log) Hash() common.Hash {
	if l.TxHash == nil {
		return common.Hash{}
	}
	return *l.TxHash
}
