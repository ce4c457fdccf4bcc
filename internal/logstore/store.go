package logstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
	pkgindexer "github.com/onticket/chainindexer/pkg/indexer"
	pkgrpc "github.com/onticket/chainindexer/pkg/rpc"
)

var (
	// ErrMissingTxHash is returned for a log the node reported without a transaction hash.
	ErrMissingTxHash = errors.New("log has no transaction hash")

	// ErrMissingBlockNumber is returned for a log the node reported without a block number.
	ErrMissingBlockNumber = errors.New("log has no block number")
)

// ChainLog is a type alias for the public ChainLog type.
type ChainLog = pkgindexer.ChainLog

// FromLog builds the row committed for l on chainID.
func FromLog(chainID int64, l pkgrpc.Log) (ChainLog, error) {
	if l.TxHash == nil {
		return ChainLog{}, ErrMissingTxHash
	}
	if l.BlockNumber == nil {
		return ChainLog{}, ErrMissingBlockNumber
	}
	if *l.BlockNumber > math.MaxInt64 {
		return ChainLog{}, fmt.Errorf("block number %d out of range", *l.BlockNumber)
	}
	if l.LogIndex > math.MaxInt32 {
		return ChainLog{}, fmt.Errorf("log index %d out of range", l.LogIndex)
	}

	topics := l.Topics
	if topics == nil {
		topics = []common.Hash{}
	}
	data := l.Data
	if data == nil {
		data = []byte{}
	}

	row := ChainLog{
		ChainID:         chainID,
		BlockNumber:     int64(*l.BlockNumber),
		TxHash:          *l.TxHash,
		LogIndex:        int32(l.LogIndex),
		ContractAddress: l.Address,
		Data:            pkgindexer.Payload{Data: data, Topics: topics},
	}
	if len(topics) > 0 {
		row.PrimaryTopic = topics[0].Hex()
	}

	return row, nil
}

// Store persists and reads chain_logs rows.
type Store struct {
	db  *db.DB
	log *logger.Logger
}

// NewStore creates a new chain log store.
func NewStore(database *db.DB, log *logger.Logger) *Store {
	return &Store{
		db:  database,
		log: log.WithComponent(internalcommon.ComponentLogStore),
	}
}

// Insert writes rows through q and returns the ones that were new.
// Rows whose identity already exists are skipped.
func (s *Store) Insert(ctx context.Context, q db.Querier, rows []ChainLog) ([]ChainLog, error) {
	const insertQuery = `
		INSERT INTO chain_logs (chain_id, block_number, tx_hash, log_index, primary_topic, contract_address, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chain_id, block_number, tx_hash, log_index) DO NOTHING
	`

	inserted := make([]ChainLog, 0, len(rows))
	for i := range rows {
		row := &rows[i]

		payload, err := json.Marshal(row.Data)
		if err != nil {
			return inserted, fmt.Errorf("failed to encode payload of log %s/%d: %w", row.TxHash.Hex(), row.LogIndex, err)
		}

		res, err := q.ExecContext(ctx, insertQuery,
			row.ChainID,
			row.BlockNumber,
			row.TxHash.Hex(),
			row.LogIndex,
			row.PrimaryTopic,
			db.LowerHex(row.ContractAddress),
			string(payload),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert log %s/%d at block %d: %w",
				row.TxHash.Hex(), row.LogIndex, row.BlockNumber, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert log %s/%d: %w", row.TxHash.Hex(), row.LogIndex, err)
		}
		if n > 0 {
			inserted = append(inserted, *row)
		}
	}

	s.log.Debugf("stored %d of %d logs", len(inserted), len(rows))

	return inserted, nil
}

// List returns the rows of chainID with from <= block_number <= to ordered by block and log index.
func (s *Store) List(ctx context.Context, chainID, from, to int64) ([]ChainLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	const listQuery = `
		SELECT chain_id, block_number, tx_hash, log_index, primary_topic, contract_address, data
		FROM chain_logs
		WHERE chain_id = $1 AND block_number >= $2 AND block_number <= $3
		ORDER BY block_number ASC, log_index ASC, tx_hash ASC
	`

	var rows []*ChainLog
	if err := s.db.Meddler.QueryAll(s.db, &rows, listQuery, chainID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list logs of chain %d in [%d, %d]: %w", chainID, from, to, err)
	}

	logs := make([]ChainLog, len(rows))
	for i, r := range rows {
		logs[i] = *r
	}

	return logs, nil
}

// Count returns the number of rows stored for chainID.
func (s *Store) Count(ctx context.Context, chainID int64) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chain_logs WHERE chain_id = $1`, chainID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count logs of chain %d: %w", chainID, err)
	}
	return n, nil
}
