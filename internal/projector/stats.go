package projector

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/pkg/indexer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatsName is the registry name of the stats projector.
const StatsName = "stats"

var contractLogs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chainindexer_contract_logs_total",
		Help: "Committed logs by contract address and primary topic",
	},
	[]string{"contract", "topic"},
)

func init() {
	indexer.Register(StatsName, func(log *logger.Logger) (indexer.Projector, error) {
		return NewStats(log), nil
	})
}

// ContractStats summarizes the logs seen for one contract.
type ContractStats struct {
	Logs      int64
	LastBlock int64
}

// Stats counts committed logs per contract. It keeps no state that cannot be rebuilt
// from chain_logs.
type Stats struct {
	mu     sync.Mutex
	byAddr map[common.Address]*ContractStats
	log    *logger.Logger
}

var _ indexer.Projector = (*Stats)(nil)

// NewStats creates an empty stats projector.
func NewStats(log *logger.Logger) *Stats {
	return &Stats{
		byAddr: make(map[common.Address]*ContractStats),
		log:    log,
	}
}

func (s *Stats) Name() string { return StatsName }

func (s *Stats) Topics() []common.Hash { return nil }

func (s *Stats) Project(_ context.Context, logs []indexer.ChainLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range logs {
		st, ok := s.byAddr[l.ContractAddress]
		if !ok {
			st = &ContractStats{}
			s.byAddr[l.ContractAddress] = st
		}
		st.Logs++
		st.LastBlock = max(st.LastBlock, l.BlockNumber)

		contractLogs.WithLabelValues(l.ContractAddress.Hex(), l.PrimaryTopic).Inc()
	}

	s.log.Debugw("contract stats updated", "logs", len(logs), "contracts", len(s.byAddr))
	return nil
}

// Snapshot returns a copy of the per-contract counters.
func (s *Stats) Snapshot() map[common.Address]ContractStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[common.Address]ContractStats, len(s.byAddr))
	for addr, st := range s.byAddr {
		out[addr] = *st
	}
	return out
}
