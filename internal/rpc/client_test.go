package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/onticket/chainindexer/internal/logger"
	pkgrpc "github.com/onticket/chainindexer/pkg/rpc"
	"github.com/stretchr/testify/require"
)

// fakeEth serves the subset of the eth namespace the client uses.
type fakeEth struct {
	chainID  int64
	head     uint64
	logs     []json.RawMessage
	filters  []map[string]any
	blockFor time.Duration
}

func (f *fakeEth) ChainId() (*hexutil.Big, error) { //nolint:revive
	return (*hexutil.Big)(big.NewInt(f.chainID)), nil
}

func (f *fakeEth) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	if f.blockFor > 0 {
		select {
		case <-time.After(f.blockFor):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return hexutil.Uint64(f.head), nil
}

func (f *fakeEth) GetLogs(filter map[string]any) ([]json.RawMessage, error) {
	f.filters = append(f.filters, filter)
	return f.logs, nil
}

func newTestClient(t *testing.T, svc *fakeEth, timeout time.Duration) *Client {
	t.Helper()

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", svc))
	t.Cleanup(srv.Stop)

	c := NewClientFromRPC(rpc.DialInProc(srv), timeout, logger.NewNopLogger())
	t.Cleanup(c.Close)
	return c
}

func TestClientImplementsProvider(t *testing.T) {
	var _ pkgrpc.Provider = (*Client)(nil)
}

func TestClient_ChainIDAndHead(t *testing.T) {
	c := newTestClient(t, &fakeEth{chainID: 137, head: 2500}, time.Second)

	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(137), id)

	head, err := c.HeadBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2500), head)
}

func TestClient_CallDeadline(t *testing.T) {
	c := newTestClient(t, &fakeEth{blockFor: time.Minute}, 20*time.Millisecond)

	_, err := c.HeadBlock(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorContains(t, err, methodBlockNumber)
}

func TestClient_GetLogs(t *testing.T) {
	addrA := common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	addrB := common.HexToAddress("0xbbbb000000000000000000000000000000000002")
	topic := common.HexToHash("0x01")
	tx := common.HexToHash("0xfeed")

	svc := &fakeEth{logs: []json.RawMessage{
		json.RawMessage(`{"address":"` + addrA.Hex() + `","topics":["` + topic.Hex() + `"],"data":"0x0102",` +
			`"blockNumber":"0xc","transactionHash":"` + tx.Hex() + `","logIndex":"0x1"}`),
		json.RawMessage(`{"address":"` + addrB.Hex() + `","topics":[],"data":"0x",` +
			`"blockNumber":"0xa","transactionHash":"` + tx.Hex() + `","logIndex":"0x0"}`),
		// no transaction hash, still surfaced
		json.RawMessage(`{"address":"` + addrA.Hex() + `","topics":[],"data":"0x","blockNumber":"0xc","logIndex":"0x0"}`),
		// undecodable, dropped
		json.RawMessage(`{"address":"not-hex","blockNumber":"0xc"}`),
	}}
	c := newTestClient(t, svc, time.Second)

	logs, err := c.GetLogs(context.Background(), []common.Address{addrA, addrB}, 1, 1000)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	require.Equal(t, uint64(10), logs[0].Block())
	require.Equal(t, addrB, logs[0].Address)

	require.Equal(t, uint64(12), logs[1].Block())
	require.Equal(t, uint32(0), logs[1].LogIndex)
	require.Nil(t, logs[1].TxHash)

	require.Equal(t, uint32(1), logs[2].LogIndex)
	require.Equal(t, tx, logs[2].Hash())
	require.Equal(t, []common.Hash{topic}, logs[2].Topics)
	require.Equal(t, []byte{1, 2}, logs[2].Data)

	require.Len(t, svc.filters, 1)
	require.Equal(t, "0x1", svc.filters[0]["fromBlock"])
	require.Equal(t, "0x3e8", svc.filters[0]["toBlock"])
	require.Len(t, svc.filters[0]["address"], 2)
}

func TestClient_GetLogsRejectsBadRange(t *testing.T) {
	c := newTestClient(t, &fakeEth{}, time.Second)

	_, err := c.GetLogs(context.Background(), []common.Address{{}}, 10, 9)
	require.ErrorContains(t, err, "invalid block range")

	logs, err := c.GetLogs(context.Background(), nil, 1, 9)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestDecodeLog_MissingFields(t *testing.T) {
	l, err := decodeLog(json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Nil(t, l.BlockNumber)
	require.Nil(t, l.TxHash)
	require.Equal(t, common.Hash{}, l.Hash())
	require.Zero(t, l.Block())

	_, err = decodeLog(json.RawMessage(`{"logIndex":"0x100000000"}`))
	require.ErrorContains(t, err, "out of range")
}

func TestToBlockNumArg(t *testing.T) {
	tests := []struct {
		blockNum uint64
		want     string
	}{
		{blockNum: 0, want: "0x0"},
		{blockNum: 100, want: "0x64"},
		{blockNum: 18000000, want: "0x112a880"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, toBlockNumArg(tt.blockNum))
		})
	}
}

func TestToFilterArg_AddressSingleVsMultiple(t *testing.T) {
	addr1 := common.HexToAddress("0x1234567890123456789012345678901234567890")
	addr2 := common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")

	single, ok := toFilterArg(ethereum.FilterQuery{Addresses: []common.Address{addr1}}).(map[string]any)
	require.True(t, ok)
	require.Equal(t, addr1, single["address"])

	multi, ok := toFilterArg(ethereum.FilterQuery{
		FromBlock: big.NewInt(1),
		ToBlock:   big.NewInt(10),
		Addresses: []common.Address{addr1, addr2},
	}).(map[string]any)
	require.True(t, ok)
	require.Equal(t, []common.Address{addr1, addr2}, multi["address"])
	require.Equal(t, "0x1", multi["fromBlock"])
	require.Equal(t, "0xa", multi["toBlock"])
}

func TestErrorType(t *testing.T) {
	require.Equal(t, "timeout", errorType(context.DeadlineExceeded))
	require.Equal(t, "canceled", errorType(context.Canceled))
	require.Equal(t, "too_many_results", errorType(errors.New("query returned more than 10000 results")))
	require.Equal(t, "transport", errorType(errors.New("connection refused")))
}
