package indexer

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/cursor"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/helpers"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/logstore"
	"github.com/onticket/chainindexer/internal/registry"
	pkgrpc "github.com/onticket/chainindexer/pkg/rpc"
	"github.com/stretchr/testify/require"
)

const testChainID = int64(137)

var (
	addrA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	addrC = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	addrD = common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	addrE = common.HexToAddress("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")

	transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
)

func defaultAddresses() registry.ContractAddresses {
	return registry.ContractAddresses{TicketManager: addrA, EventManager: addrB, Marketplace: addrC, TokenSwap: addrD}
}

type getLogsCall struct {
	addresses []common.Address
	from, to  int64
}

// fakeChain replays a fixed log tape.
type fakeChain struct {
	mu         sync.Mutex
	chainID    int64
	head       int64
	tape       []pkgrpc.Log
	getLogsErr error
	gate       chan struct{}
	calls      []getLogsCall
}

var _ pkgrpc.Provider = (*fakeChain)(nil)

func newFakeChain(head int64, tape ...pkgrpc.Log) *fakeChain {
	return &fakeChain{chainID: testChainID, head: head, tape: tape}
}

func (c *fakeChain) ChainID(context.Context) (int64, error) {
	return c.chainID, nil
}

func (c *fakeChain) HeadBlock(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head, nil
}

func (c *fakeChain) setHead(head int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = head
}

func (c *fakeChain) GetLogs(ctx context.Context, addresses []common.Address, from, to int64) ([]pkgrpc.Log, error) {
	c.mu.Lock()
	c.calls = append(c.calls, getLogsCall{addresses: slices.Clone(addresses), from: from, to: to})
	gate, err := c.gate, c.getLogsErr
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []pkgrpc.Log
	for _, l := range c.tape {
		if !slices.Contains(addresses, l.Address) {
			continue
		}
		if l.BlockNumber != nil && (int64(*l.BlockNumber) < from || int64(*l.BlockNumber) > to) {
			continue
		}
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b pkgrpc.Log) int {
		return cmp.Or(cmp.Compare(a.Block(), b.Block()), cmp.Compare(a.LogIndex, b.LogIndex))
	})
	return out, nil
}

func (c *fakeChain) getLogsCalls() []getLogsCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

func newLog(address common.Address, block uint64, tx byte, index uint32) pkgrpc.Log {
	hash := common.BytesToHash([]byte{tx})
	return pkgrpc.Log{
		Address:     address,
		Topics:      []common.Hash{transferTopic, common.BytesToHash(address.Bytes())},
		Data:        []byte{tx, byte(index)},
		BlockNumber: &block,
		TxHash:      &hash,
		LogIndex:    index,
	}
}

type staticAddresses struct {
	addrs registry.ContractAddresses
	ok    bool
}

func (s staticAddresses) Addresses() (registry.ContractAddresses, bool) {
	return s.addrs, s.ok
}

type testEnv struct {
	db      *db.DB
	chain   *fakeChain
	indexer *Indexer
	cursors *cursor.Store
	logs    *logstore.Store
}

func testConfig() Config {
	return Config{
		ChainID:              testChainID,
		ConfirmationDepth:    6,
		BackfillBatchSize:    1000,
		IncrementalBatchSize: 500,
		PollInterval:         10 * time.Millisecond,
	}
}

func newTestEnv(t *testing.T, provider pkgrpc.Provider, addresses AddressSource, opts ...Option) *testEnv {
	t.Helper()

	database := helpers.NewTestDB(t, "indexer.db")
	log := logger.NewNopLogger()

	idx, err := New(testConfig(), provider, database, addresses, log, opts...)
	require.NoError(t, err)

	env := &testEnv{
		db:      database,
		indexer: idx,
		cursors: cursor.NewStore(database, log),
		logs:    logstore.NewStore(database, log),
	}
	if chain, ok := provider.(*fakeChain); ok {
		env.chain = chain
	}
	return env
}

func (e *testEnv) setCursor(t *testing.T, block int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.cursors.Ensure(ctx, testChainID))
	_, err := e.cursors.Save(ctx, e.db, testChainID, block)
	require.NoError(t, err)
}

func (e *testEnv) cursor(t *testing.T) int64 {
	t.Helper()
	block, err := e.cursors.Load(context.Background(), testChainID)
	require.NoError(t, err)
	return block
}

func (e *testEnv) rowCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.logs.Count(context.Background(), testChainID)
	require.NoError(t, err)
	return n
}
