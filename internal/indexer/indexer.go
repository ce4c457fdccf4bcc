package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/cursor"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/logstore"
	"github.com/onticket/chainindexer/internal/metrics"
	"github.com/onticket/chainindexer/internal/registry"
	"github.com/onticket/chainindexer/internal/rpc"
	"github.com/onticket/chainindexer/pkg/config"
	pkgindexer "github.com/onticket/chainindexer/pkg/indexer"
	pkgrpc "github.com/onticket/chainindexer/pkg/rpc"
)

const (
	outcomeCommitted = "committed"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

// Config holds the indexing parameters of one chain.
type Config struct {
	ChainID              int64
	ConfirmationDepth    int64
	BackfillBatchSize    int64
	IncrementalBatchSize int64
	PollInterval         time.Duration
}

// NewConfig takes the indexing parameters from cfg, which must have its defaults applied.
func NewConfig(cfg *config.Config, chainID int64) Config {
	return Config{
		ChainID:              chainID,
		ConfirmationDepth:    cfg.ConfirmationDepth,
		BackfillBatchSize:    cfg.BackfillBatchSize,
		IncrementalBatchSize: cfg.IncrementalBatchSize,
		PollInterval:         cfg.PollInterval.Duration,
	}
}

// AddressSource returns the contract addresses the next batch filters on.
type AddressSource interface {
	Addresses() (registry.ContractAddresses, bool)
}

// Dispatcher receives the logs of every committed batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, logs []pkgindexer.ChainLog) error
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithDispatcher hands committed logs to d.
func WithDispatcher(d Dispatcher) Option {
	return func(i *Indexer) {
		i.dispatcher = d
	}
}

// Indexer moves the cursor of one chain towards the confirmed tip and commits the
// logs of the tracked contracts batch by batch.
type Indexer struct {
	cfg        Config
	provider   pkgrpc.Provider
	db         *db.DB
	cursors    *cursor.Store
	logs       *logstore.Store
	addresses  AddressSource
	dispatcher Dispatcher
	log        *logger.Logger

	state atomic.Int32
}

// New creates an indexer for cfg.ChainID.
func New(
	cfg Config,
	provider pkgrpc.Provider,
	database *db.DB,
	addresses AddressSource,
	log *logger.Logger,
	opts ...Option,
) (*Indexer, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if database == nil {
		return nil, errors.New("database is required")
	}
	if addresses == nil {
		return nil, errors.New("address source is required")
	}
	if cfg.ConfirmationDepth < 1 || cfg.BackfillBatchSize < 1 || cfg.IncrementalBatchSize < 1 {
		return nil, fmt.Errorf("invalid indexer configuration: %+v", cfg)
	}

	i := &Indexer{
		cfg:       cfg,
		provider:  provider,
		db:        database,
		cursors:   cursor.NewStore(database, log),
		logs:      logstore.NewStore(database, log),
		addresses: addresses,
		log:       log.WithComponent(common.ComponentIndexer),
	}
	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// VerifyChainID returns the chain id the provider serves. A non-zero expected id
// that differs from it yields ErrChainIDMismatch.
func VerifyChainID(ctx context.Context, provider pkgrpc.Provider, expected int64) (int64, error) {
	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	if expected != 0 && chainID != expected {
		return 0, fmt.Errorf("%w: node reports %d, configured %d", ErrChainIDMismatch, chainID, expected)
	}
	return chainID, nil
}

// State returns what the indexer is currently doing.
func (i *Indexer) State() State {
	return State(i.state.Load())
}

func (i *Indexer) setState(s State) {
	i.state.Store(int32(s))
}

// Run backfills once and then follows the chain every PollInterval until ctx is done.
// Batch failures are logged and retried on the next tick from the persisted cursor.
func (i *Indexer) Run(ctx context.Context) error {
	i.log.Infow("starting indexer",
		"chain_id", i.cfg.ChainID,
		"confirmation_depth", i.cfg.ConfirmationDepth,
		"poll_interval", i.cfg.PollInterval,
	)
	metrics.ComponentHealthSet(common.ComponentIndexer, true)
	defer metrics.ComponentHealthSet(common.ComponentIndexer, false)

	if err := i.Backfill(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		i.log.Errorw("backfill incomplete, continuing with incremental loop", "chain_id", i.cfg.ChainID, "error", err)
	}

	ticker := time.NewTicker(i.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			i.log.Info("indexer stopped")
			return nil
		case <-ticker.C:
			if err := i.Tick(ctx); err != nil && ctx.Err() == nil {
				i.log.Errorw("tick failed", "chain_id", i.cfg.ChainID, "error", err)
			}
		}
	}
}

// Backfill commits batches of BackfillBatchSize blocks up to the confirmed tip.
func (i *Indexer) Backfill(ctx context.Context) error {
	return i.advance(ctx, PhaseBackfill, i.cfg.BackfillBatchSize)
}

// Tick commits batches of IncrementalBatchSize blocks up to the confirmed tip.
func (i *Indexer) Tick(ctx context.Context) error {
	return i.advance(ctx, PhaseIncremental, i.cfg.IncrementalBatchSize)
}

// advance creates the cursor if needed, reads the head once and commits batches
// until the cursor reaches head - depth.
func (i *Indexer) advance(ctx context.Context, phase Phase, batchSize int64) error {
	if err := i.cursors.Ensure(ctx, i.cfg.ChainID); err != nil {
		return err
	}

	i.setState(StateFetching)
	head, err := i.provider.HeadBlock(ctx)
	i.setState(StateIdle)
	if err != nil {
		return fmt.Errorf("failed to get head block: %w", err)
	}
	metrics.HeadBlockSet(i.cfg.ChainID, head)

	tip, ok := ConfirmedTip(head, i.cfg.ConfirmationDepth)
	if !ok {
		i.log.Debugw("chain not deeper than confirmation depth", "head", head, "depth", i.cfg.ConfirmationDepth)
		return nil
	}

	current, err := i.cursors.Load(ctx, i.cfg.ChainID)
	if err != nil {
		return err
	}
	metrics.CursorBlockSet(i.cfg.ChainID, current)

	if current < tip {
		i.log.Debugw("advancing", "phase", phase, "cursor", current, "tip", tip, "head", head)
	}

	for batches := PlanBatches(current, tip, batchSize); len(batches) > 0; batches = PlanBatches(current, tip, batchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}

		current, err = i.processBatch(ctx, phase, batches[0])
		if err != nil {
			return err
		}
	}

	return nil
}

// processBatch fetches and commits one batch and returns the cursor afterwards.
func (i *Indexer) processBatch(ctx context.Context, phase Phase, b Batch) (int64, error) {
	start := time.Now()
	defer func() {
		i.setState(StateIdle)
		metrics.BatchProcessingTimeLog(i.cfg.ChainID, phase.String(), time.Since(start))
	}()

	// one snapshot per batch
	addrs, ok := i.addresses.Addresses()
	if !ok {
		metrics.BatchInc(i.cfg.ChainID, phase.String(), outcomeSkipped)
		i.log.Warnw("skipping batch, contract addresses not resolved", "chain_id", i.cfg.ChainID, "batch", b.String())
		return b.From, ErrNoAddresses
	}

	i.setState(StateFetching)
	fetched, err := i.fetchLogs(ctx, addrs.List(), b.FirstBlock(), b.To)
	if err != nil {
		metrics.BatchInc(i.cfg.ChainID, phase.String(), outcomeFailed)
		return b.From, fmt.Errorf("failed to get logs for %s: %w", b, err)
	}

	i.setState(StatePersisting)
	rows := i.toRows(b, addrs, fetched)

	var (
		inserted []logstore.ChainLog
		advanced bool
	)
	err = db.WithTx(ctx, i.db.DB, i.log, func(tx *sql.Tx) error {
		var err error
		if inserted, err = i.logs.Insert(ctx, tx, rows); err != nil {
			return err
		}
		advanced, err = i.cursors.Save(ctx, tx, i.cfg.ChainID, b.To)
		return err
	})
	if err != nil {
		metrics.BatchInc(i.cfg.ChainID, phase.String(), outcomeFailed)
		return b.From, fmt.Errorf("failed to commit %s: %w", b, err)
	}

	next := b.To
	if !advanced {
		if next, err = i.cursors.Load(ctx, i.cfg.ChainID); err != nil {
			return b.From, err
		}
	}

	metrics.BatchInc(i.cfg.ChainID, phase.String(), outcomeCommitted)
	metrics.LogsCommittedInc(i.cfg.ChainID, len(inserted))
	metrics.CursorBlockSet(i.cfg.ChainID, next)
	metrics.BatchCommitted(i.cfg.ChainID, b.From, b.To, start)

	i.log.Infow("batch committed",
		"phase", phase,
		"chain_id", i.cfg.ChainID,
		"from", b.From,
		"to", b.To,
		"logs", len(rows),
		"inserted", len(inserted),
	)

	i.setState(StateIdle)
	// rows stored by an earlier attempt were already handed out
	i.dispatch(ctx, inserted)

	return next, nil
}

// fetchLogs queries [from, to]. When the node refuses the range for its result size,
// the range is split in half until every part is accepted; the batch stays one commit unit.
func (i *Indexer) fetchLogs(ctx context.Context, addresses []ethcommon.Address, from, to int64) ([]pkgrpc.Log, error) {
	logs, err := i.provider.GetLogs(ctx, addresses, from, to)
	if err == nil {
		return logs, nil
	}

	tooMany, detail := rpc.IsTooManyResultsError(err)
	if !tooMany {
		return nil, err
	}
	if from >= to {
		return nil, fmt.Errorf("cannot split range further, single block %d has too many logs: %w", from, err)
	}

	mid := from + (to-from)/2
	i.log.Infow("too many logs, splitting range",
		"from", from, "to", to, "mid", mid, "detail", detail)

	lower, err := i.fetchLogs(ctx, addresses, from, mid)
	if err != nil {
		return nil, err
	}
	upper, err := i.fetchLogs(ctx, addresses, mid+1, to)
	if err != nil {
		return nil, err
	}
	return append(lower, upper...), nil
}

// toRows converts fetched logs to rows, dropping the ones that cannot be stored
// and the ones the node returned outside of the query.
func (i *Indexer) toRows(b Batch, addrs registry.ContractAddresses, fetched []pkgrpc.Log) []logstore.ChainLog {
	rows := make([]logstore.ChainLog, 0, len(fetched))
	for _, l := range fetched {
		row, err := logstore.FromLog(i.cfg.ChainID, l)
		if err != nil {
			metrics.LogsSkippedInc(i.cfg.ChainID, skipReason(err))
			i.log.Warnw("skipping unreadable log",
				"chain_id", i.cfg.ChainID,
				"batch", b.String(),
				"address", l.Address.Hex(),
				"block", l.Block(),
				"tx_hash", l.Hash().Hex(),
				"log_index", l.LogIndex,
				"error", err,
			)
			continue
		}
		if row.BlockNumber < b.FirstBlock() || row.BlockNumber > b.To {
			metrics.LogsSkippedInc(i.cfg.ChainID, "out_of_range")
			i.log.Warnw("skipping log outside of the requested range",
				"batch", b.String(), "block", row.BlockNumber, "tx_hash", row.TxHash.Hex())
			continue
		}
		if _, ok := addrs.NameOf(row.ContractAddress); !ok {
			metrics.LogsSkippedInc(i.cfg.ChainID, "foreign_address")
			i.log.Warnw("skipping log from an address outside of the snapshot",
				"batch", b.String(), "address", row.ContractAddress.Hex(), "tx_hash", row.TxHash.Hex())
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func (i *Indexer) dispatch(ctx context.Context, rows []logstore.ChainLog) {
	if i.dispatcher == nil || len(rows) == 0 {
		return
	}
	if err := i.dispatcher.Dispatch(ctx, rows); err != nil {
		i.log.Errorw("projection failed, logs stay committed", "chain_id", i.cfg.ChainID, "error", err)
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, logstore.ErrMissingTxHash):
		return "missing_tx_hash"
	case errors.Is(err, logstore.ErrMissingBlockNumber):
		return "missing_block_number"
	default:
		return "invalid"
	}
}
