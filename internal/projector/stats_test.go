package projector

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/pkg/indexer"
	"github.com/stretchr/testify/require"
)

func TestStats_Project(t *testing.T) {
	s := NewStats(logger.NewNopLogger())
	marketplace := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	other := newTestLog(&approvalTopic, 30, 0)
	other.ContractAddress = marketplace

	require.NoError(t, s.Project(context.Background(), []indexer.ChainLog{
		newTestLog(&transferTopic, 10, 0),
		newTestLog(nil, 25, 3),
		other,
	}))
	require.NoError(t, s.Project(context.Background(), []indexer.ChainLog{newTestLog(&transferTopic, 12, 0)}))

	snap := s.Snapshot()
	require.Equal(t, ContractStats{Logs: 3, LastBlock: 25}, snap[ticketManager])
	require.Equal(t, ContractStats{Logs: 1, LastBlock: 30}, snap[marketplace])

	// snapshots are copies
	snap[ticketManager] = ContractStats{}
	require.Equal(t, int64(3), s.Snapshot()[ticketManager].Logs)
}

func TestStats_Registered(t *testing.T) {
	require.NotNil(t, indexer.GetFactory(StatsName))

	p, err := indexer.Create(StatsName, logger.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, StatsName, p.Name())
	require.Nil(t, p.Topics())
}
