package indexer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChainLog is a committed raw log. It is keyed by
// (ChainID, BlockNumber, TxHash, LogIndex) and never updated once written.
// Uses meddler tags for automatic struct-to-db mapping.
type ChainLog struct {
	ChainID         int64          `meddler:"chain_id"`
	BlockNumber     int64          `meddler:"block_number"`
	TxHash          common.Hash    `meddler:"tx_hash,hash"`
	LogIndex        int32          `meddler:"log_index"`
	PrimaryTopic    string         `meddler:"primary_topic"`
	ContractAddress common.Address `meddler:"contract_address,address"`
	Data            Payload        `meddler:"data,json"`
}

// Payload is the opaque part of a log as stored in chain_logs.data.
type Payload struct {
	Data   hexutil.Bytes `json:"data"`
	Topics []common.Hash `json:"topics"`
}

// EventTopic returns the first topic, the event signature for non-anonymous events.
func (l *ChainLog) EventTopic() (common.Hash, bool) {
	if len(l.Data.Topics) == 0 {
		return common.Hash{}, false
	}
	return l.Data.Topics[0], true
}
