package projector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/indexer/mocks"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/pkg/indexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	approvalTopic = common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")
	ticketManager = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

func newTestLog(topic *common.Hash, block int64, index int32) indexer.ChainLog {
	l := indexer.ChainLog{
		ChainID:         137,
		BlockNumber:     block,
		TxHash:          common.BytesToHash([]byte{byte(block)}),
		LogIndex:        index,
		ContractAddress: ticketManager,
		Data:            indexer.Payload{Data: []byte{}, Topics: []common.Hash{}},
	}
	if topic != nil {
		l.PrimaryTopic = topic.Hex()
		l.Data.Topics = []common.Hash{*topic}
	}
	return l
}

// captureProjected is a helper to capture logs passed to Project.
func captureProjected(mu *sync.Mutex, captured *[]indexer.ChainLog) func(mock.Arguments) {
	return func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		if logs, ok := args[1].([]indexer.ChainLog); ok {
			*captured = append(*captured, logs...)
		}
	}
}

func TestCoordinator_RoutesByTopic(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator(logger.NewNopLogger())

	transfers := mocks.NewProjector(t)
	transfers.EXPECT().Name().Return("transfers")
	transfers.EXPECT().Topics().Return([]common.Hash{transferTopic})

	everything := mocks.NewProjector(t)
	everything.EXPECT().Name().Return("everything")
	everything.EXPECT().Topics().Return(nil)

	coord.Register(transfers)
	coord.Register(everything)
	assert.Equal(t, []string{"transfers", "everything"}, coord.Names())

	logs := []indexer.ChainLog{
		newTestLog(&transferTopic, 10, 0),
		newTestLog(&approvalTopic, 10, 1),
		newTestLog(nil, 11, 0),
		newTestLog(&transferTopic, 12, 0),
	}

	var (
		mu                   sync.Mutex
		gotTransfers, gotAll []indexer.ChainLog
	)
	transfers.EXPECT().Project(mock.Anything, mock.Anything).Return(nil).Run(func(_ context.Context, l []indexer.ChainLog) {
		mu.Lock()
		defer mu.Unlock()
		gotTransfers = append(gotTransfers, l...)
	}).Once()
	everything.On("Project", mock.Anything, mock.Anything).Return(nil).Run(captureProjected(&mu, &gotAll)).Once()

	require.NoError(t, coord.Dispatch(context.Background(), logs))
	assert.Equal(t, []indexer.ChainLog{logs[0], logs[3]}, gotTransfers)
	assert.Equal(t, logs, gotAll)
}

func TestCoordinator_NoInterestedProjector(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator(logger.NewNopLogger())

	approvals := mocks.NewProjector(t)
	approvals.EXPECT().Name().Return("approvals")
	approvals.EXPECT().Topics().Return([]common.Hash{approvalTopic})
	coord.Register(approvals)

	require.NoError(t, coord.Dispatch(context.Background(), []indexer.ChainLog{newTestLog(&transferTopic, 1, 0)}))
	approvals.AssertNotCalled(t, "Project", mock.Anything, mock.Anything)
}

func TestCoordinator_PropagatesProjectorError(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator(logger.NewNopLogger())

	broken := mocks.NewProjector(t)
	broken.EXPECT().Name().Return("broken")
	broken.EXPECT().Topics().Return(nil)
	broken.EXPECT().Project(mock.Anything, mock.Anything).Return(errors.New("table missing"))

	healthy := mocks.NewProjector(t)
	healthy.EXPECT().Name().Return("healthy")
	healthy.EXPECT().Topics().Return(nil)
	healthy.EXPECT().Project(mock.Anything, mock.Anything).Return(nil).Once()

	coord.Register(broken)
	coord.Register(healthy)

	err := coord.Dispatch(context.Background(), []indexer.ChainLog{newTestLog(&transferTopic, 1, 0)})
	require.ErrorContains(t, err, "projector broken failed: table missing")
}

func TestCoordinator_Empty(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator(logger.NewNopLogger())
	require.NoError(t, coord.Dispatch(context.Background(), []indexer.ChainLog{newTestLog(nil, 1, 0)}))
	require.Empty(t, coord.Names())
}

func TestFromNames(t *testing.T) {
	coord, err := FromNames([]string{"Stats"}, logger.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, []string{StatsName}, coord.Names())

	_, err = FromNames([]string{"does-not-exist"}, logger.NewNopLogger())
	require.ErrorContains(t, err, "unknown projector")
}
