package logstore

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"regexp"
	"slices"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/helpers"
	"github.com/onticket/chainindexer/internal/logger"
	pkgrpc "github.com/onticket/chainindexer/pkg/rpc"
	"github.com/stretchr/testify/require"
)

const chainID = int64(137)

var (
	contract = common.HexToAddress("0xAAAA00000000000000000000000000000000000A")
	topicA   = common.HexToHash("0x0a")
	topicB   = common.HexToHash("0x0b")
)

func rpcLog(block uint64, tx string, index uint32, topics ...common.Hash) pkgrpc.Log {
	h := common.HexToHash(tx)
	return pkgrpc.Log{
		Address:     contract,
		Topics:      topics,
		Data:        []byte{0xde, 0xad},
		BlockNumber: &block,
		TxHash:      &h,
		LogIndex:    index,
	}
}

func mustRows(t *testing.T, logs ...pkgrpc.Log) []ChainLog {
	t.Helper()

	rows := make([]ChainLog, 0, len(logs))
	for _, l := range logs {
		row, err := FromLog(chainID, l)
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestFromLog(t *testing.T) {
	row, err := FromLog(chainID, rpcLog(12, "0x01", 1, topicA, topicB))
	require.NoError(t, err)

	require.Equal(t, chainID, row.ChainID)
	require.Equal(t, int64(12), row.BlockNumber)
	require.Equal(t, int32(1), row.LogIndex)
	require.Equal(t, topicA.Hex(), row.PrimaryTopic)
	require.Equal(t, contract, row.ContractAddress)
	require.Equal(t, []common.Hash{topicA, topicB}, row.Data.Topics)

	noTopics, err := FromLog(chainID, rpcLog(12, "0x01", 2))
	require.NoError(t, err)
	require.Empty(t, noTopics.PrimaryTopic)
	require.NotNil(t, noTopics.Data.Topics)
}

func TestFromLog_DataErrors(t *testing.T) {
	missingHash := rpcLog(1, "0x01", 0)
	missingHash.TxHash = nil
	_, err := FromLog(chainID, missingHash)
	require.ErrorIs(t, err, ErrMissingTxHash)

	missingBlock := rpcLog(1, "0x01", 0)
	missingBlock.BlockNumber = nil
	_, err = FromLog(chainID, missingBlock)
	require.ErrorIs(t, err, ErrMissingBlockNumber)

	_, err = FromLog(chainID, rpcLog(1, "0x01", math.MaxInt32+1))
	require.ErrorContains(t, err, "out of range")
}

func TestStore_InsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := helpers.NewTestDB(t, "logs.db")
	s := NewStore(database, logger.NewNopLogger())

	rows := mustRows(t,
		rpcLog(10, "0x01", 0, topicA),
		rpcLog(12, "0x02", 0, topicB),
		rpcLog(12, "0x02", 1),
	)

	inserted, err := s.Insert(ctx, database, rows)
	require.NoError(t, err)
	require.Equal(t, rows, inserted)

	inserted, err = s.Insert(ctx, database, rows)
	require.NoError(t, err)
	require.Empty(t, inserted)

	// only the unseen row comes back
	more := append(slices.Clone(rows), mustRows(t, rpcLog(13, "0x04", 0))...)
	inserted, err = s.Insert(ctx, database, more)
	require.NoError(t, err)
	require.Equal(t, more[3:], inserted)

	count, err := s.Count(ctx, chainID)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	other, err := s.Count(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, other)
}

func TestStore_ListRoundTrip(t *testing.T) {
	ctx := context.Background()
	database := helpers.NewTestDB(t, "logs.db")
	s := NewStore(database, logger.NewNopLogger())

	rows := mustRows(t,
		rpcLog(12, "0x02", 1),
		rpcLog(10, "0x01", 0, topicA),
		rpcLog(12, "0x02", 0, topicB, topicA),
		rpcLog(40, "0x03", 0, topicA),
	)
	_, err := s.Insert(ctx, database, rows)
	require.NoError(t, err)

	got, err := s.List(ctx, chainID, 10, 12)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, int64(10), got[0].BlockNumber)
	require.Equal(t, rows[2], got[1])
	require.Equal(t, rows[0], got[2])
	require.Equal(t, contract, got[0].ContractAddress)

	var stored string
	require.NoError(t, database.QueryRow(
		`SELECT contract_address FROM chain_logs WHERE block_number = 10`).Scan(&stored))
	require.Equal(t, "0xaaaa00000000000000000000000000000000000a", stored)

	require.NoError(t, database.QueryRow(
		`SELECT data FROM chain_logs WHERE block_number = 10`).Scan(&stored))
	require.JSONEq(t, `{"data":"0xdead","topics":["`+topicA.Hex()+`"]}`, stored)
}

func TestStore_InsertRollsBackWithTx(t *testing.T) {
	ctx := context.Background()
	database := helpers.NewTestDB(t, "logs.db")
	s := NewStore(database, logger.NewNopLogger())

	boom := errors.New("boom")
	err := db.WithTx(ctx, database.DB, logger.NewNopLogger(), func(tx *sql.Tx) error {
		if _, err := s.Insert(ctx, tx, mustRows(t, rpcLog(10, "0x01", 0))); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := s.Count(ctx, chainID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestStore_InsertError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	s := NewStore(db.Wrap(sqlDB, db.DriverPostgres), logger.NewNopLogger())
	rows := mustRows(t, rpcLog(10, "0x01", 0), rpcLog(11, "0x02", 0))

	insert := regexp.QuoteMeta("INSERT INTO chain_logs")
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WillReturnError(sql.ErrConnDone)

	inserted, err := s.Insert(context.Background(), sqlDB, rows)
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Equal(t, rows[:1], inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
